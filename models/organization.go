package models

// UnknownOrganisation is shown when a report names an organisation that no
// longer exists.
const UnknownOrganisation = "Okänd organisation"

// Organization is an organizations/{id} document. Reports reference it by name.
type Organization struct {
	ID   string `json:"id" firestore:"-"`
	Name string `json:"name" firestore:"name" validate:"required"`
}
