package models

import "time"

// MaterialType is the kind of equipment a material row tracks.
type MaterialType string

const (
	MaterialImeiSim       MaterialType = "imeiSim"
	MaterialVasterBrickor MaterialType = "vasterBrickor"
	MaterialTankkortBil   MaterialType = "tankkortBil"
)

// Valid reports whether t is a known material type.
func (t MaterialType) Valid() bool {
	switch t {
	case MaterialImeiSim, MaterialVasterBrickor, MaterialTankkortBil:
		return true
	}
	return false
}

// IncidentReport is one free-text entry in a material item's log.
type IncidentReport struct {
	ID         string    `json:"id" firestore:"id"`
	Text       string    `json:"text" firestore:"text"`
	ReportedBy string    `json:"reportedBy" firestore:"reportedBy"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}

// MaterialItem is a material/{managerId}/items/{itemId} document.
type MaterialItem struct {
	ID                 string           `json:"id" firestore:"-"`
	ManagerUID         string           `json:"managerUid" firestore:"-"`
	Type               MaterialType     `json:"type" firestore:"type"`
	Label              string           `json:"label,omitempty" firestore:"label,omitempty"`
	IMEI               string           `json:"imei,omitempty" firestore:"imei,omitempty"`
	SimNumber          string           `json:"simNumber,omitempty" firestore:"simNumber,omitempty"`
	PhoneModel         string           `json:"phoneModel,omitempty" firestore:"phoneModel,omitempty"`
	VestNumber         string           `json:"vestNumber,omitempty" firestore:"vestNumber,omitempty"`
	TagNumber          string           `json:"tagNumber,omitempty" firestore:"tagNumber,omitempty"`
	FuelCardNumber     string           `json:"fuelCardNumber,omitempty" firestore:"fuelCardNumber,omitempty"`
	RegistrationNumber string           `json:"registrationNumber,omitempty" firestore:"registrationNumber,omitempty"`
	AssignedTo         string           `json:"assignedTo,omitempty" firestore:"assignedTo,omitempty"`
	Reports            []IncidentReport `json:"reports" firestore:"reports"`
	CreatedAt          time.Time        `json:"createdAt" firestore:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt" firestore:"updatedAt"`
}

// Identifier returns the number that identifies the item physically: the
// IMEI, vest number or registration number depending on the type.
func (m *MaterialItem) Identifier() string {
	switch m.Type {
	case MaterialImeiSim:
		return m.IMEI
	case MaterialVasterBrickor:
		return m.VestNumber
	case MaterialTankkortBil:
		return m.RegistrationNumber
	}
	return ""
}

// MaterialItemRequest creates or replaces a material row.
type MaterialItemRequest struct {
	Type               MaterialType `json:"type" validate:"required"`
	Label              string       `json:"label,omitempty"`
	IMEI               string       `json:"imei,omitempty" validate:"required_if=Type imeiSim"`
	SimNumber          string       `json:"simNumber,omitempty"`
	PhoneModel         string       `json:"phoneModel,omitempty"`
	VestNumber         string       `json:"vestNumber,omitempty" validate:"required_if=Type vasterBrickor"`
	TagNumber          string       `json:"tagNumber,omitempty"`
	FuelCardNumber     string       `json:"fuelCardNumber,omitempty"`
	RegistrationNumber string       `json:"registrationNumber,omitempty" validate:"required_if=Type tankkortBil"`
	AssignedTo         string       `json:"assignedTo,omitempty"`
}

// IncidentReportRequest appends to a material item's log.
type IncidentReportRequest struct {
	Text string `json:"text" validate:"required"`
}
