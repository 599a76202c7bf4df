// middleware/auth_middleware.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
)

const sessionKey = "session"

// SessionLoader resolves a uid into the guard session: the users document
// and whether the profile gate is suppressed.
type SessionLoader interface {
	LoadSession(ctx context.Context, uid string) (security.Session, error)
}

// RedirectHint is the Data of a 401/403 response, telling the portal where to go.
type RedirectHint struct {
	Redirect string   `json:"redirect"`
	Missing  []string `json:"missingFields,omitempty"`
}

func deny(c echo.Context, status int, message string, d security.Decision) error {
	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
		Data:    RedirectHint{Redirect: d.Redirect, Missing: d.Missing},
	})
}

// LoadSession loads the session of the token's user and stores it on the
// context. It must run after JWTMiddleware.
func LoadSession(loader SessionLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, err := ExtractUserID(c)
			if err != nil {
				return deny(c, http.StatusUnauthorized, "Authentication required",
					security.Decision{Outcome: security.RedirectLogin, Redirect: security.LoginPath})
			}
			session, err := loader.LoadSession(c.Request().Context(), uid)
			if err != nil {
				logger.Get("app").WithError(err).WithField("uid", uid).Warn("could not load session")
				return deny(c, http.StatusUnauthorized, "Authentication required",
					security.Decision{Outcome: security.RedirectLogin, Redirect: security.LoginPath})
			}
			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

// CurrentSession returns the session stored by LoadSession.
func CurrentSession(c echo.Context) (security.Session, bool) {
	s, ok := c.Get(sessionKey).(security.Session)
	return s, ok
}

// RequireRoles lets admin and the listed roles through. The role comes from
// the loaded users document, not the token, so a role change applies as soon
// as the session cache is evicted.
func RequireRoles(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, ok := CurrentSession(c)
			if !ok || session.Role() == nil {
				return deny(c, http.StatusUnauthorized, "Authentication required",
					security.Decision{Outcome: security.RedirectLogin, Redirect: security.LoginPath})
			}
			d := security.RoleGate(*session.Role(), roles...)
			if !d.Allowed() {
				logger.Get("app").WithFields(logrus.Fields{
					"uid": session.UID, "role": *session.Role(), "path": c.Request().URL.Path,
				}).Warn("role not allowed")
				return deny(c, http.StatusForbidden, "Access denied for your role", d)
			}
			return next(c)
		}
	}
}

// RequireCompleteProfile sends sessions with blank required profile fields to
// /profile. Requests under any of the skip prefixes pass through.
func RequireCompleteProfile(skip ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range skip {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}
			session, ok := CurrentSession(c)
			if !ok {
				return next(c)
			}
			if d, blocked := security.ProfileGate(session); blocked {
				return deny(c, http.StatusForbidden, "Complete your profile first", d)
			}
			return next(c)
		}
	}
}
