package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/teamsales/salesportal/models"
)

// SalesSpecRepository keeps both stored shapes of a sales specification: the
// salesSpecifications map on the user document and the
// users/{uid}/salesSpecifications/{periodKey} documents.
type SalesSpecRepository struct {
	client *firestore.Client
}

func NewSalesSpecRepository(db *firestore.Client) *SalesSpecRepository {
	return &SalesSpecRepository{client: db}
}

func (r *SalesSpecRepository) userRef(uid string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(uid)
}

// Upsert writes spec for the period label into the user's map and into the
// sub-collection under periodKey, atomically.
func (r *SalesSpecRepository) Upsert(ctx context.Context, uid, periodKey string, spec models.SalesSpecification) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	spec.UpdatedAt = time.Now()
	userRef := r.userRef(uid)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(userRef); err != nil {
			if isNotFound(err) {
				return ErrNotFound
			}
			return err
		}
		inline := spec
		inline.Period = ""
		if err := tx.Update(userRef, []firestore.Update{
			{FieldPath: firestore.FieldPath{"salesSpecifications", spec.Period}, Value: inline},
		}); err != nil {
			return err
		}
		return tx.Set(userRef.Collection(salesSpecificationsCollection).Doc(periodKey), spec)
	})
}

// ListStored returns the sub-collection documents of uid, keyed by period label.
func (r *SalesSpecRepository) ListStored(ctx context.Context, uid string) (map[string]models.SalesSpecification, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snaps, err := r.userRef(uid).Collection(salesSpecificationsCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.SalesSpecification, len(snaps))
	for _, snap := range snaps {
		var s models.SalesSpecification
		if err := snap.DataTo(&s); err != nil {
			return nil, fmt.Errorf("decode sales specification %s: %w", snap.Ref.Path, err)
		}
		if s.Period == "" {
			s.Period = snap.Ref.ID
		}
		out[s.Period] = s
	}
	return out, nil
}
