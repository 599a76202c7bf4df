package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/teamsales/salesportal/models"
)

// QualityReportRepository stores qualityReports and their
// users/{uid}/qualityReports copies.
type QualityReportRepository struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
}

func NewQualityReportRepository(db *firestore.Client) *QualityReportRepository {
	return &QualityReportRepository{
		client:     db,
		collection: db.Collection(qualityReportsCollection),
	}
}

func (r *QualityReportRepository) userCopyRef(uid, reportID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(uid).Collection(userQualityReportsCollection).Doc(reportID)
}

func decodeQualityReport(snap *firestore.DocumentSnapshot) (models.QualityReport, error) {
	var rep models.QualityReport
	if err := snap.DataTo(&rep); err != nil {
		return rep, fmt.Errorf("decode quality report %s: %w", snap.Ref.ID, err)
	}
	rep.ID = snap.Ref.ID
	return rep, nil
}

func decodeQualityReports(snaps []*firestore.DocumentSnapshot) ([]models.QualityReport, error) {
	out := make([]models.QualityReport, 0, len(snaps))
	for _, snap := range snaps {
		rep, err := decodeQualityReport(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, nil
}

func (r *QualityReportRepository) writeCopies(tx *firestore.Transaction, report *models.QualityReport) error {
	for _, c := range report.UserReports() {
		c := c
		if err := tx.Set(r.userCopyRef(c.UserID, report.ID), &c); err != nil {
			return err
		}
	}
	return nil
}

const duplicateAudit = "a quality report for this team, date and organisation"

// sameAudit matches audits of one team at one organisation on one day.
func (r *QualityReportRepository) sameAudit(report *models.QualityReport) firestore.Query {
	return r.collection.
		Where("date", "==", report.Date).
		Where("organisation", "==", report.Organisation).
		Where("managerUid", "==", report.ManagerUID)
}

// Create assigns report an id and writes it with one copy per member.
func (r *QualityReportRepository) Create(ctx context.Context, report *models.QualityReport) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ref := r.collection.NewDoc()
	now := time.Now()
	report.ID = ref.ID
	report.CreatedAt, report.UpdatedAt = now, now

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := ensureUnique(tx, r.sameAudit(report), ref.ID, duplicateAudit); err != nil {
			return err
		}
		if err := tx.Create(ref, report); err != nil {
			return err
		}
		return r.writeCopies(tx, report)
	})
}

// Replace overwrites report and its member copies, deleting the copies of
// members that were dropped. It returns the dropped member ids.
func (r *QualityReportRepository) Replace(ctx context.Context, report *models.QualityReport) ([]string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ref := r.collection.Doc(report.ID)
	var removed []string
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		removed = nil
		snap, err := tx.Get(ref)
		if isNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		old, err := decodeQualityReport(snap)
		if err != nil {
			return err
		}
		if err := ensureUnique(tx, r.sameAudit(report), report.ID, duplicateAudit); err != nil {
			return err
		}

		report.CreatedAt = old.CreatedAt
		report.CreatedBy = old.CreatedBy
		report.UpdatedAt = time.Now()
		if err := tx.Set(ref, report); err != nil {
			return err
		}
		if err := r.writeCopies(tx, report); err != nil {
			return err
		}
		for _, uid := range models.SortedKeys(old.Members) {
			if _, still := report.Members[uid]; still {
				continue
			}
			removed = append(removed, uid)
			if err := tx.Delete(r.userCopyRef(uid, report.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	return removed, err
}

// Delete removes the report and every users/*/qualityReports copy that
// references it.
func (r *QualityReportRepository) Delete(ctx context.Context, id string) (*models.QualityReport, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ref := r.collection.Doc(id)
	var deleted models.QualityReport
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if isNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if deleted, err = decodeQualityReport(snap); err != nil {
			return err
		}

		// The group also spans the top-level collection; only nested copies
		// carry qualityReportId.
		copies, err := tx.Documents(r.client.CollectionGroup(userQualityReportsCollection).
			Where("qualityReportId", "==", id)).GetAll()
		if err != nil {
			return err
		}
		for _, c := range copies {
			if c.Ref.Parent.Parent == nil {
				continue
			}
			if err := tx.Delete(c.Ref); err != nil {
				return err
			}
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// Get loads qualityReports/{id}.
func (r *QualityReportRepository) Get(ctx context.Context, id string) (*models.QualityReport, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snap, err := r.collection.Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rep, err := decodeQualityReport(snap)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// List returns the quality reports matching q, newest first.
func (r *QualityReportRepository) List(ctx context.Context, q models.ReportQuery) ([]models.QualityReport, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := r.collection.Query
	if q.ManagerUID != "" {
		query = query.Where("managerUid", "==", q.ManagerUID)
	}
	query = dateRange(query, "date", q.From, q.To).OrderBy("date", firestore.Desc)

	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeQualityReports(snaps)
}

// ListAssignedTo returns the quality reports whose assignedTo holds uid.
func (r *QualityReportRepository) ListAssignedTo(ctx context.Context, uid string, q models.ReportQuery) ([]models.QualityReport, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := dateRange(r.collection.Where("assignedTo", "array-contains", uid), "date", q.From, q.To)
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return decodeQualityReports(snaps)
}

// ListForUser returns the users/{uid}/qualityReports copies dated inside q.
func (r *QualityReportRepository) ListForUser(ctx context.Context, uid string, q models.ReportQuery) ([]models.UserQualityReport, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := dateRange(r.client.Collection(usersCollection).Doc(uid).Collection(userQualityReportsCollection).Query, "date", q.From, q.To)
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]models.UserQualityReport, 0, len(snaps))
	for _, snap := range snaps {
		var c models.UserQualityReport
		if err := snap.DataTo(&c); err != nil {
			return nil, fmt.Errorf("decode quality copy %s: %w", snap.Ref.Path, err)
		}
		c.ID = snap.Ref.ID
		c.UserID = uid
		out = append(out, c)
	}
	return out, nil
}
