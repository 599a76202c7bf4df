package repositories

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/teamsales/salesportal/models"
)

type OrganizationRepository struct {
	collection *firestore.CollectionRef
}

func NewOrganizationRepository(db *firestore.Client) *OrganizationRepository {
	return &OrganizationRepository{collection: db.Collection(organizationsCollection)}
}

// List returns every organization ordered by name.
func (r *OrganizationRepository) List(ctx context.Context) ([]models.Organization, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snaps, err := r.collection.OrderBy("name", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	orgs := make([]models.Organization, 0, len(snaps))
	for _, snap := range snaps {
		var o models.Organization
		if err := snap.DataTo(&o); err != nil {
			return nil, fmt.Errorf("decode organization %s: %w", snap.Ref.ID, err)
		}
		o.ID = snap.Ref.ID
		orgs = append(orgs, o)
	}
	return orgs, nil
}

// Create adds an organization and sets its id.
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ref, _, err := r.collection.Add(ctx, org)
	if err != nil {
		return err
	}
	org.ID = ref.ID
	return nil
}

// Rename sets a new display name. Reports keep the old name they were filed under.
func (r *OrganizationRepository) Rename(ctx context.Context, id, name string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.collection.Doc(id).Update(ctx, []firestore.Update{{Path: "name", Value: name}})
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.collection.Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return ErrNotFound
	}
	return err
}
