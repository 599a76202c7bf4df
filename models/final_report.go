package models

import "time"

// Attendance values for a member on a final report.
const (
	AttendancePresent = "present"
	AttendanceSick    = "sick"
	AttendanceAbsent  = "absent"
)

// MemberResult is one team member's slice of a final report.
type MemberResult struct {
	Name          string `json:"name" firestore:"name"`
	SalesID       string `json:"salesId" firestore:"salesId"`
	Sales         int    `json:"sales" firestore:"sales" validate:"gte=0"`
	Reactivations int    `json:"reactivations" firestore:"reactivations" validate:"gte=0"`
	Status        string `json:"status" firestore:"status" validate:"required,oneof=present sick absent"`
}

// FinalReport is a finalReports/{id} document: one team outing per
// manager, date, organisation and location.
type FinalReport struct {
	ID                 string                  `json:"id" firestore:"-"`
	ManagerUID         string                  `json:"managerUid" firestore:"managerUid"`
	Date               string                  `json:"date" firestore:"date"`
	Organisation       string                  `json:"organisation" firestore:"organisation"`
	Location           string                  `json:"location" firestore:"location"`
	Goal               int                     `json:"goal" firestore:"goal"`
	TotalSales         int                     `json:"totalSales" firestore:"totalSales"`
	TotalReactivations int                     `json:"totalReactivations" firestore:"totalReactivations"`
	Members            map[string]MemberResult `json:"members" firestore:"members"`
	CreatedAt          time.Time               `json:"createdAt" firestore:"createdAt"`
	UpdatedAt          time.Time               `json:"updatedAt" firestore:"updatedAt"`
}

// UserReport is the denormalized users/{uid}/reports/{finalReportId} copy of
// one member's slice.
type UserReport struct {
	ID            string    `json:"id" firestore:"-"`
	UserID        string    `json:"userId" firestore:"-"`
	FinalReportID string    `json:"finalReportId" firestore:"finalReportId"`
	ManagerUID    string    `json:"managerUid" firestore:"managerUid"`
	Date          string    `json:"date" firestore:"date"`
	Organisation  string    `json:"organisation" firestore:"organisation"`
	Location      string    `json:"location" firestore:"location"`
	Name          string    `json:"name" firestore:"name"`
	SalesID       string    `json:"salesId" firestore:"salesId"`
	Sales         int       `json:"sales" firestore:"sales"`
	Reactivations int       `json:"reactivations" firestore:"reactivations"`
	Status        string    `json:"status" firestore:"status"`
	UpdatedAt     time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// FinalReportRequest is the team report form.
type FinalReportRequest struct {
	ManagerUID   string                  `json:"managerUid,omitempty"`
	Date         string                  `json:"date" validate:"required,datetime=2006-01-02"`
	Organisation string                  `json:"organisation" validate:"required"`
	Location     string                  `json:"location" validate:"required"`
	Goal         int                     `json:"goal" validate:"gte=0"`
	Members      map[string]MemberResult `json:"members" validate:"required,min=1,dive"`
}

// UserReports builds the per-member sub-documents of r.
func (r *FinalReport) UserReports() []UserReport {
	out := make([]UserReport, 0, len(r.Members))
	for _, uid := range SortedKeys(r.Members) {
		m := r.Members[uid]
		out = append(out, UserReport{
			ID:            r.ID,
			UserID:        uid,
			FinalReportID: r.ID,
			ManagerUID:    r.ManagerUID,
			Date:          r.Date,
			Organisation:  r.Organisation,
			Location:      r.Location,
			Name:          m.Name,
			SalesID:       m.SalesID,
			Sales:         m.Sales,
			Reactivations: m.Reactivations,
			Status:        m.Status,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	return out
}

// Recount sets the report totals from its members.
func (r *FinalReport) Recount() {
	r.TotalSales, r.TotalReactivations = 0, 0
	for _, m := range r.Members {
		r.TotalSales += m.Sales
		r.TotalReactivations += m.Reactivations
	}
}
