// models/user.go
package models

import (
	"strings"
	"time"
)

// User is the users/{uid} document. The document id is the Firebase Auth uid.
type User struct {
	ID             string   `json:"id" firestore:"-"`
	Name           string   `json:"name" firestore:"name"`
	Email          string   `json:"email" firestore:"email"`
	Role           Role     `json:"role" firestore:"role"`
	ManagerUID     string   `json:"managerUid,omitempty" firestore:"managerUid,omitempty"`
	SalesID        string   `json:"salesId,omitempty" firestore:"salesId,omitempty"`
	SistaArbetsdag string   `json:"sistaArbetsdag,omitempty" firestore:"sistaArbetsdag,omitempty"`
	MenuComponents []string `json:"menuComponents,omitempty" firestore:"menuComponents,omitempty"`
	MaterialLocked bool     `json:"materialLocked,omitempty" firestore:"materialLocked,omitempty"`

	Profile

	SalesSpecifications map[string]SalesSpecification `json:"salesSpecifications,omitempty" firestore:"salesSpecifications,omitempty"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Profile holds the personal fields a user fills in on the profile screen.
// Firestore flattens the embedded struct into the user document.
type Profile struct {
	Personnummer   string `json:"personnummer" firestore:"personnummer"`
	Adress         string `json:"adress" firestore:"adress"`
	PostnummerOrt  string `json:"postnummerOrt" firestore:"postnummerOrt"`
	Bank           string `json:"bank" firestore:"bank"`
	Clearingnummer string `json:"clearingnummer" firestore:"clearingnummer"`
	Kontonummer    string `json:"kontonummer" firestore:"kontonummer"`
	Telefon        string `json:"telefon" firestore:"telefon"`
	AnhorigNamn    string `json:"anhorigNamn" firestore:"anhorigNamn"`
	AnhorigTelefon string `json:"anhorigTelefon" firestore:"anhorigTelefon"`
}

// RequiredProfileFields returns the stored field name and value of every
// field the profile gate checks, in form order.
func (u *User) RequiredProfileFields() [][2]string {
	return [][2]string{
		{"name", u.Name},
		{"personnummer", u.Personnummer},
		{"adress", u.Adress},
		{"postnummerOrt", u.PostnummerOrt},
		{"bank", u.Bank},
		{"clearingnummer", u.Clearingnummer},
		{"kontonummer", u.Kontonummer},
		{"email", u.Email},
		{"telefon", u.Telefon},
		{"anhorigNamn", u.AnhorigNamn},
		{"anhorigTelefon", u.AnhorigTelefon},
	}
}

// MissingProfileFields lists the required profile fields that are blank.
func (u *User) MissingProfileFields() []string {
	var missing []string
	for _, f := range u.RequiredProfileFields() {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	return missing
}

// CreateUserRequest is the "add user" form.
type CreateUserRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Role       Role   `json:"role" validate:"required"`
	ManagerUID string `json:"managerUid,omitempty"`
	SalesID    string `json:"salesId,omitempty"`
}

// UpdateUserRequest carries the admin-editable fields. Nil pointers are left unchanged.
type UpdateUserRequest struct {
	Name           *string   `json:"name,omitempty"`
	Role           *Role     `json:"role,omitempty"`
	SalesID        *string   `json:"salesId,omitempty"`
	SistaArbetsdag *string   `json:"sistaArbetsdag,omitempty"`
	MenuComponents *[]string `json:"menuComponents,omitempty"`
	MaterialLocked *bool     `json:"materialLocked,omitempty"`
}

// UpdateProfileRequest is the profile screen form.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required"`
	Profile
}

// AssignManagerRequest moves a user to another sales-manager. An empty
// managerUid unlinks the user.
type AssignManagerRequest struct {
	ManagerUID string `json:"managerUid"`
}

// LoginRequest is the email/password sign-in form.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordRequest asks for a password-reset email.
type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// UserPatch is a partial update of a users document. Nil fields are left
// alone; an empty ManagerUID or SistaArbetsdag removes that field.
type UserPatch struct {
	Name           *string
	Role           *Role
	SalesID        *string
	ManagerUID     *string
	SistaArbetsdag *string
	MenuComponents *[]string
	MaterialLocked *bool
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Role == nil && p.SalesID == nil && p.ManagerUID == nil &&
		p.SistaArbetsdag == nil && p.MenuComponents == nil && p.MaterialLocked == nil
}

// Apply copies the set fields of p onto u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.SalesID != nil {
		u.SalesID = *p.SalesID
	}
	if p.ManagerUID != nil {
		u.ManagerUID = *p.ManagerUID
	}
	if p.SistaArbetsdag != nil {
		u.SistaArbetsdag = *p.SistaArbetsdag
	}
	if p.MenuComponents != nil {
		u.MenuComponents = *p.MenuComponents
	}
	if p.MaterialLocked != nil {
		u.MaterialLocked = *p.MaterialLocked
	}
}
