package models

// Role is the closed set of account roles stored in users/{uid}.role.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleSalesManager   Role = "sales-manager"
	RoleQuality        Role = "quality"
	RoleUser           Role = "user"
	RoleUppdragsgivare Role = "uppdragsgivare"
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleUser, RoleSalesManager, RoleAdmin, RoleQuality, RoleUppdragsgivare}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole accepts the stored string form and reports whether it is known.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// RequiresCompleteProfile reports whether accounts of this role must fill in
// the full profile before using any other screen.
func (r Role) RequiresCompleteProfile() bool {
	switch r {
	case RoleUser, RoleSalesManager, RoleAdmin, RoleQuality:
		return true
	}
	return false
}

// CreatableRoles returns the roles an actor of role r may assign when
// creating a new account.
func (r Role) CreatableRoles() []Role {
	switch r {
	case RoleAdmin:
		return AllRoles
	case RoleSalesManager:
		return []Role{RoleUser}
	}
	return nil
}

// CanCreate reports whether an actor of role r may create an account of role target.
func (r Role) CanCreate(target Role) bool {
	for _, allowed := range r.CreatableRoles() {
		if allowed == target {
			return true
		}
	}
	return false
}
