package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/middleware"
	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
)

// AuthService handles sign-in, password reset and sign-out.
type AuthService struct {
	identity IdentityProvider
	users    UserStore
	cache    SessionCache
	tokens   *middleware.TokenIssuer
	mailer   Mailer
}

func NewAuthService(identity IdentityProvider, users UserStore, cache SessionCache, tokens *middleware.TokenIssuer, mailer Mailer) *AuthService {
	return &AuthService{identity: identity, users: users, cache: cache, tokens: tokens, mailer: mailer}
}

// LoginResult is returned to the portal after a successful sign-in.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
	Home      string       `json:"home"`
}

// Login verifies the credentials with the provider and issues a session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	uid, err := s.identity.SignIn(ctx, email, req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Get(ctx, uid)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: no user profile for this account", ErrInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}

	token, claims, err := s.tokens.GenerateJWT(uid, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	s.cache.CacheUser(ctx, user)

	logger.Get("audit").WithFields(logrus.Fields{"uid": uid, "role": user.Role}).Info("user signed in")
	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Unix(claims.ExpiresAt, 0),
		User:      user,
		Home:      security.HomePath(user),
	}, nil
}

// ResetPassword mails a password-reset link. Provider and mail errors are
// returned as they are.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	link, err := s.identity.PasswordResetLink(ctx, email)
	if err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, email, link)
}

// Logout revokes the token until it would have expired and drops the cached user.
func (s *AuthService) Logout(ctx context.Context, claims *middleware.JwtCustomClaims) error {
	if claims == nil {
		return nil
	}
	if err := s.cache.Revoke(ctx, claims.Id, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.cache.EvictUser(ctx, claims.UserID)
	logger.Get("audit").WithField("uid", claims.UserID).Info("user signed out")
	return nil
}
