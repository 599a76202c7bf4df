package security

import (
	"github.com/teamsales/salesportal/models"
)

// Outcome is what the portal does with a navigation request.
type Outcome string

const (
	Allow                Outcome = "allow"
	Loading              Outcome = "loading"
	RedirectLogin        Outcome = "redirect-login"
	RedirectUnauthorized Outcome = "redirect-unauthorized"
	RedirectProfile      Outcome = "redirect-profile"
)

// Redirect targets.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	ProfilePath      = "/profile"
)

// Session is the signed-in state a decision is made on. A session with a uid
// but no user document yet is still loading.
type Session struct {
	UID  string
	User *models.User
	// SuppressProfileGate is set while the user is creating another user.
	SuppressProfileGate bool
}

// Authenticated reports whether someone is signed in.
func (s Session) Authenticated() bool { return s.UID != "" }

// Role returns the loaded role, or nil while the user document is loading.
func (s Session) Role() *models.Role {
	if s.User == nil || s.User.Role == "" {
		return nil
	}
	r := s.User.Role
	return &r
}

// Decision is the result of Decide.
type Decision struct {
	Outcome  Outcome  `json:"outcome"`
	Redirect string   `json:"redirect,omitempty"`
	Missing  []string `json:"missingFields,omitempty"`
}

// Allowed reports whether the screen may be rendered.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Decide gates screen for session. The profile gate runs before the admin
// bypass, so admins with an incomplete profile are sent to /profile too.
func Decide(session Session, screen Screen) Decision {
	if !session.Authenticated() {
		return Decision{Outcome: RedirectLogin, Redirect: LoginPath}
	}
	role := session.Role()
	if role == nil {
		return Decision{Outcome: Loading}
	}

	if screen.Key != ScreenProfile {
		if d, blocked := ProfileGate(session); blocked {
			return d
		}
	}

	if d := RoleGate(*role, screen.Roles...); !d.Allowed() {
		return d
	}
	if *role == models.RoleUppdragsgivare && screen.Key != ScreenProfile && !menuEnabled(session.User, screen.Key) {
		return Decision{Outcome: RedirectUnauthorized, Redirect: UnauthorizedPath}
	}
	return Decision{Outcome: Allow}
}

// ProfileGate blocks sessions whose role needs a complete profile while a
// required field is blank, unless the gate is suppressed.
func ProfileGate(session Session) (Decision, bool) {
	role := session.Role()
	if role == nil || !role.RequiresCompleteProfile() || session.SuppressProfileGate {
		return Decision{}, false
	}
	if missing := session.User.MissingProfileFields(); len(missing) > 0 {
		return Decision{Outcome: RedirectProfile, Redirect: ProfilePath, Missing: missing}, true
	}
	return Decision{}, false
}

// RoleGate allows admin and any role in allowed.
func RoleGate(role models.Role, allowed ...models.Role) Decision {
	if role == models.RoleAdmin {
		return Decision{Outcome: Allow}
	}
	for _, r := range allowed {
		if r == role {
			return Decision{Outcome: Allow}
		}
	}
	return Decision{Outcome: RedirectUnauthorized, Redirect: UnauthorizedPath}
}

// DecidePath resolves path to a screen first. Unknown paths are unauthorized.
func DecidePath(session Session, path string) Decision {
	screen, ok := ScreenForPath(path)
	if !ok {
		screen = Screen{Path: path}
	}
	return Decide(session, screen)
}

// MenuAllows reports whether user may reach key. Only an uppdragsgivare is
// limited by menuComponents.
func MenuAllows(user *models.User, key ScreenKey) bool {
	if user == nil {
		return false
	}
	if user.Role != models.RoleUppdragsgivare {
		return true
	}
	return menuEnabled(user, key)
}

func menuEnabled(user *models.User, key ScreenKey) bool {
	for _, k := range user.MenuComponents {
		if ScreenKey(k) == key {
			return true
		}
	}
	return false
}
