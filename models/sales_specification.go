package models

import "time"

// SalesSpecification holds the payroll figures of one user for one period.
type SalesSpecification struct {
	Period        string    `json:"period,omitempty" firestore:"period,omitempty"`
	Approved      int       `json:"approved" firestore:"approved" validate:"gte=0"`
	TotalApproved int       `json:"totalApproved" firestore:"totalApproved" validate:"gte=0"`
	Commission    float64   `json:"commission" firestore:"commission" validate:"gte=0"`
	Salary        float64   `json:"salary" firestore:"salary" validate:"gte=0"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty" firestore:"updatedAt,omitempty"`
}

// SalesSpecificationRequest upserts the figures for a period label such as
// "18 Januari - 17 Februari 2024". Nil counts are computed from the
// user's reports and quality audits for that period.
type SalesSpecificationRequest struct {
	Period        string  `json:"period" validate:"required"`
	Approved      *int    `json:"approved,omitempty" validate:"omitempty,gte=0"`
	TotalApproved *int    `json:"totalApproved,omitempty" validate:"omitempty,gte=0"`
	Commission    float64 `json:"commission" validate:"gte=0"`
	Salary        float64 `json:"salary" validate:"gte=0"`
}
