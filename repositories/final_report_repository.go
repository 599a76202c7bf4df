package repositories

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/teamsales/salesportal/models"
)

// FinalReportRepository stores finalReports and their users/{uid}/reports
// copies. Every write touches the primary and the copies in one transaction.
type FinalReportRepository struct {
	client     *firestore.Client
	collection *firestore.CollectionRef
}

func NewFinalReportRepository(db *firestore.Client) *FinalReportRepository {
	return &FinalReportRepository{
		client:     db,
		collection: db.Collection(finalReportsCollection),
	}
}

func (r *FinalReportRepository) userReportRef(uid, reportID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(uid).Collection(userReportsCollection).Doc(reportID)
}

func decodeFinalReport(snap *firestore.DocumentSnapshot) (models.FinalReport, error) {
	var rep models.FinalReport
	if err := snap.DataTo(&rep); err != nil {
		return rep, fmt.Errorf("decode final report %s: %w", snap.Ref.ID, err)
	}
	rep.ID = snap.Ref.ID
	return rep, nil
}

const duplicateVisit = "a report for this team, date, organisation and location"

// sameVisit matches reports of one team at one organisation and location on
// one day.
func (r *FinalReportRepository) sameVisit(report *models.FinalReport) firestore.Query {
	return r.collection.
		Where("managerUid", "==", report.ManagerUID).
		Where("date", "==", report.Date).
		Where("organisation", "==", report.Organisation).
		Where("location", "==", report.Location)
}

// Create assigns report an id and writes it with one copy per member.
func (r *FinalReportRepository) Create(ctx context.Context, report *models.FinalReport) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ref := r.collection.NewDoc()
	now := time.Now()
	report.ID = ref.ID
	report.CreatedAt, report.UpdatedAt = now, now

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := ensureUnique(tx, r.sameVisit(report), ref.ID, duplicateVisit); err != nil {
			return err
		}
		if err := tx.Create(ref, report); err != nil {
			return err
		}
		for _, ur := range report.UserReports() {
			ur := ur
			if err := tx.Set(r.userReportRef(ur.UserID, report.ID), &ur); err != nil {
				return err
			}
		}
		return nil
	})
}

// Replace overwrites report and its member copies in place. Copies of members
// no longer on the report are deleted. It returns the removed member ids.
func (r *FinalReportRepository) Replace(ctx context.Context, report *models.FinalReport) ([]string, error) {
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
		old, err := decodeFinalReport(snap)
		if err != nil {
			return err
		}
		if err := ensureUnique(tx, r.sameVisit(report), report.ID, duplicateVisit); err != nil {
			return err
		}

		report.CreatedAt = old.CreatedAt
		report.UpdatedAt = time.Now()
		if err := tx.Set(ref, report); err != nil {
			return err
		}
		for _, ur := range report.UserReports() {
			ur := ur
			if err := tx.Set(r.userReportRef(ur.UserID, report.ID), &ur); err != nil {
				return err
			}
		}
		for _, uid := range models.SortedKeys(old.Members) {
			if _, still := report.Members[uid]; still {
				continue
			}
			removed = append(removed, uid)
			if err := tx.Delete(r.userReportRef(uid, report.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	return removed, err
}

// Delete removes the report and every users/*/reports document whose
// finalReportId is id. It returns the report as it was before deletion.
func (r *FinalReportRepository) Delete(ctx context.Context, id string) (*models.FinalReport, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	ref := r.collection.Doc(id)
	var deleted models.FinalReport
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if isNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if deleted, err = decodeFinalReport(snap); err != nil {
			return err
		}

		copies, err := tx.Documents(r.client.CollectionGroup(userReportsCollection).
			Where("finalReportId", "==", id)).GetAll()
		if err != nil {
			return err
		}
		for _, c := range copies {
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

// Get loads finalReports/{id}.
func (r *FinalReportRepository) Get(ctx context.Context, id string) (*models.FinalReport, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	snap, err := r.collection.Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rep, err := decodeFinalReport(snap)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// List returns the reports matching q, newest first.
func (r *FinalReportRepository) List(ctx context.Context, q models.ReportQuery) ([]models.FinalReport, error) {
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
	reports := make([]models.FinalReport, 0, len(snaps))
	for _, snap := range snaps {
		rep, err := decodeFinalReport(snap)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// ListForUser returns the users/{uid}/reports copies dated inside q.
func (r *FinalReportRepository) ListForUser(ctx context.Context, uid string, q models.ReportQuery) ([]models.UserReport, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	query := dateRange(r.client.Collection(usersCollection).Doc(uid).Collection(userReportsCollection).Query, "date", q.From, q.To)
	snaps, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([]models.UserReport, 0, len(snaps))
	for _, snap := range snaps {
		var ur models.UserReport
		if err := snap.DataTo(&ur); err != nil {
			return nil, fmt.Errorf("decode user report %s: %w", snap.Ref.Path, err)
		}
		ur.ID = snap.Ref.ID
		ur.UserID = uid
		out = append(out, ur)
	}
	return out, nil
}
