package models

import "time"

// QualityMetrics is one member's audit result on a quality report.
type QualityMetrics struct {
	Name          string `json:"name" firestore:"name"`
	RegSales      int    `json:"regSales" firestore:"regSales" validate:"gte=0"`
	InvalidAmount int    `json:"invalidAmount" firestore:"invalidAmount" validate:"gte=0"`
	OutOfTarget   int    `json:"outOfTarget" firestore:"outOfTarget" validate:"gte=0"`
	Pending       int    `json:"pending" firestore:"pending" validate:"gte=0"`
	Total         int    `json:"total" firestore:"total" validate:"gte=0"`
}

// QualityReport is a qualityReports/{id} document.
type QualityReport struct {
	ID           string                    `json:"id" firestore:"-"`
	Date         string                    `json:"date" firestore:"date"`
	Organisation string                    `json:"organisation" firestore:"organisation"`
	ManagerUID   string                    `json:"managerUid" firestore:"managerUid"`
	CreatedBy    string                    `json:"createdBy" firestore:"createdBy"`
	AssignedTo   []string                  `json:"assignedTo" firestore:"assignedTo"`
	Members      map[string]QualityMetrics `json:"members" firestore:"members"`
	CreatedAt    time.Time                 `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time                 `json:"updatedAt" firestore:"updatedAt"`
}

// UserQualityReport is the users/{uid}/qualityReports/{id} copy of one
// member's metrics.
type UserQualityReport struct {
	ID              string    `json:"id" firestore:"-"`
	UserID          string    `json:"userId" firestore:"-"`
	QualityReportID string    `json:"qualityReportId" firestore:"qualityReportId"`
	Date            string    `json:"date" firestore:"date"`
	Organisation    string    `json:"organisation" firestore:"organisation"`
	ManagerUID      string    `json:"managerUid" firestore:"managerUid"`
	QualityMetrics
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// QualityReportRequest is the quality audit form.
type QualityReportRequest struct {
	Date         string                    `json:"date" validate:"required,datetime=2006-01-02"`
	Organisation string                    `json:"organisation" validate:"required"`
	ManagerUID   string                    `json:"managerUid,omitempty"`
	Members      map[string]QualityMetrics `json:"members" validate:"dive"`
}

// Assignees returns the manager followed by every member id, without duplicates.
func (q *QualityReport) Assignees() []string {
	seen := make(map[string]bool, len(q.Members)+1)
	var out []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	add(q.ManagerUID)
	for _, id := range SortedKeys(q.Members) {
		add(id)
	}
	return out
}

// UserReports builds the per-member sub-documents of q.
func (q *QualityReport) UserReports() []UserQualityReport {
	out := make([]UserQualityReport, 0, len(q.Members))
	for _, uid := range SortedKeys(q.Members) {
		out = append(out, UserQualityReport{
			ID:              q.ID,
			UserID:          uid,
			QualityReportID: q.ID,
			Date:            q.Date,
			Organisation:    q.Organisation,
			ManagerUID:      q.ManagerUID,
			QualityMetrics:  q.Members[uid],
			UpdatedAt:       q.UpdatedAt,
		})
	}
	return out
}
