package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/teamsales/salesportal/models"
)

// MaterialRepository stores material/{managerId}/items.
type MaterialRepository struct {
	client *firestore.Client
}

func NewMaterialRepository(db *firestore.Client) *MaterialRepository {
	return &MaterialRepository{client: db}
}

func (r *MaterialRepository) items(managerUID string) *firestore.CollectionRef {
	return r.client.Collection(materialCollection).Doc(managerUID).Collection(materialItemsCollection)
}

func decodeMaterialItem(managerUID string, snap *firestore.DocumentSnapshot) (models.MaterialItem, error) {
	var item models.MaterialItem
	if err := snap.DataTo(&item); err != nil {
		return item, fmt.Errorf("decode material item %s: %w", snap.Ref.Path, err)
	}
	item.ID = snap.Ref.ID
	item.ManagerUID = managerUID
	if item.Reports == nil {
		item.Reports = []models.IncidentReport{}
	}
	return item, nil
}

// List returns a manager's items, oldest first.
func (r *MaterialRepository) List(ctx context.Context, managerUID string) ([]models.MaterialItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snaps, err := r.items(managerUID).OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]models.MaterialItem, 0, len(snaps))
	for _, snap := range snaps {
		item, err := decodeMaterialItem(managerUID, snap)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *MaterialRepository) Get(ctx context.Context, managerUID, itemID string) (*models.MaterialItem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snap, err := r.items(managerUID).Doc(itemID).Get(ctx)
	if isNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item, err := decodeMaterialItem(managerUID, snap)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Save creates or overwrites item under item.ID. The incident log is left
// untouched on existing items.
func (r *MaterialRepository) Save(ctx context.Context, item *models.MaterialItem) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ref := r.items(item.ManagerUID).Doc(item.ID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		switch {
		case isNotFound(err):
			item.CreatedAt = time.Now()
			if item.Reports == nil {
				item.Reports = []models.IncidentReport{}
			}
		case err != nil:
			return err
		default:
			existing, err := decodeMaterialItem(item.ManagerUID, snap)
			if err != nil {
				return err
			}
			item.CreatedAt = existing.CreatedAt
			item.Reports = existing.Reports
		}
		item.UpdatedAt = time.Now()
		return tx.Set(ref, item)
	})
}

// AppendReport adds one entry to the item's incident log.
func (r *MaterialRepository) AppendReport(ctx context.Context, managerUID, itemID string, report models.IncidentReport) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.items(managerUID).Doc(itemID).Update(ctx, []firestore.Update{
		{Path: "reports", Value: firestore.ArrayUnion(report)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *MaterialRepository) Delete(ctx context.Context, managerUID, itemID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.items(managerUID).Doc(itemID).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}
