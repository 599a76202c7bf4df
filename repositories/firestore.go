package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names.
const (
	usersCollection               = "users"
	finalReportsCollection        = "finalReports"
	qualityReportsCollection      = "qualityReports"
	organizationsCollection       = "organizations"
	materialCollection            = "material"
	materialItemsCollection       = "items"
	userReportsCollection         = "reports"
	userQualityReportsCollection  = "qualityReports"
	salesSpecificationsCollection = "salesSpecifications"
)

const callTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when a write would duplicate an existing document.
	ErrConflict = errors.New("conflict")
)

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, callTimeout)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// ensureUnique fails with ErrConflict when q matches a document other than
// selfID. It runs inside tx so the check and the write are atomic.
func ensureUnique(tx *firestore.Transaction, q firestore.Query, selfID, what string) error {
	snaps, err := tx.Documents(q.Limit(2)).GetAll()
	if err != nil {
		return err
	}
	for _, snap := range snaps {
		if snap.Ref.ID != selfID {
			return fmt.Errorf("%w: %s already exists", ErrConflict, what)
		}
	}
	return nil
}

// dateRange applies an inclusive YYYY-MM-DD window on field to q.
func dateRange(q firestore.Query, field, from, to string) firestore.Query {
	if from != "" {
		q = q.Where(field, ">=", from)
	}
	if to != "" {
		q = q.Where(field, "<=", to)
	}
	return q
}
