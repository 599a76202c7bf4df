package services

import (
	"context"
	"errors"

	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
)

// SessionService resolves the signed-in user into a guard session.
type SessionService struct {
	users UserStore
	cache SessionCache
}

func NewSessionService(users UserStore, cache SessionCache) *SessionService {
	return &SessionService{users: users, cache: cache}
}

// LoadUser returns users/{uid}, served from the session cache when possible.
func (s *SessionService) LoadUser(ctx context.Context, uid string) (*models.User, error) {
	if u, ok := s.cache.CachedUser(ctx, uid); ok {
		return u, nil
	}
	u, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.cache.CacheUser(ctx, u)
	return u, nil
}

// LoadSession builds the guard session for uid.
func (s *SessionService) LoadSession(ctx context.Context, uid string) (security.Session, error) {
	u, err := s.LoadUser(ctx, uid)
	if err != nil {
		return security.Session{}, err
	}
	return security.Session{
		UID:                 uid,
		User:                u,
		SuppressProfileGate: s.cache.ProfileGateSuppressed(ctx, uid),
	}, nil
}

// SessionView is what the portal needs right after sign-in.
type SessionView struct {
	UID           string            `json:"uid"`
	Name          string            `json:"name"`
	Email         string            `json:"email"`
	Role          models.Role       `json:"role"`
	ManagerUID    string            `json:"managerUid,omitempty"`
	MissingFields []string          `json:"missingFields"`
	Navigation    []security.Screen `json:"navigation"`
	Home          string            `json:"home"`
}

func (s *SessionService) View(ctx context.Context, uid string) (*SessionView, error) {
	session, err := s.LoadSession(ctx, uid)
	if err != nil {
		return nil, err
	}
	u := session.User
	view := &SessionView{
		UID:           uid,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		ManagerUID:    u.ManagerUID,
		MissingFields: []string{},
		Navigation:    security.NavigationFor(u),
		Home:          security.HomePath(u),
	}
	if d, blocked := security.ProfileGate(session); blocked {
		view.MissingFields = d.Missing
		view.Home = security.ProfilePath
	}
	return view, nil
}

// Resolve decides whether uid may open path. An unknown uid is treated as
// signed out.
func (s *SessionService) Resolve(ctx context.Context, uid, path string) (security.Decision, error) {
	if uid == "" {
		return security.DecidePath(security.Session{}, path), nil
	}
	session, err := s.LoadSession(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return security.DecidePath(security.Session{}, path), nil
	}
	if err != nil {
		return security.Decision{}, err
	}
	return security.DecidePath(session, path), nil
}
