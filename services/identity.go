package services

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// IdentityProvider is the external authentication provider.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (uid string, err error)
	CreateAccount(ctx context.Context, email, password, displayName string) (uid string, err error)
	DisableAccount(ctx context.Context, uid string) error
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

// FirebaseIdentity signs users in through the Identity Toolkit REST API and
// manages accounts through the Firebase Admin SDK.
type FirebaseIdentity struct {
	auth    *auth.Client
	toolkit *identitytoolkit.Service
}

func NewFirebaseIdentity(ctx context.Context, authClient *auth.Client, apiKey string) (*FirebaseIdentity, error) {
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("identity toolkit: %w", err)
	}
	return &FirebaseIdentity{auth: authClient, toolkit: toolkit}, nil
}

// SignIn verifies an email and password. A rejection is wrapped in
// ErrInvalidCredentials carrying the provider's message.
func (f *FirebaseIdentity) SignIn(ctx context.Context, email, password string) (string, error) {
	resp, err := f.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code >= 400 && gerr.Code < 500 {
			return "", fmt.Errorf("%w: %s", ErrInvalidCredentials, gerr.Message)
		}
		return "", err
	}
	return resp.LocalId, nil
}

func (f *FirebaseIdentity) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	rec, err := f.auth.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", fmt.Errorf("%w: email %s is already registered", ErrConflict, email)
		}
		return "", err
	}
	return rec.UID, nil
}

// DisableAccount blocks sign-in and revokes the account's refresh tokens.
func (f *FirebaseIdentity) DisableAccount(ctx context.Context, uid string) error {
	if _, err := f.auth.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Disabled(true)); err != nil {
		if auth.IsUserNotFound(err) {
			return nil
		}
		return err
	}
	return f.auth.RevokeRefreshTokens(ctx, uid)
}

func (f *FirebaseIdentity) PasswordResetLink(ctx context.Context, email string) (string, error) {
	return f.auth.PasswordResetLink(ctx, email)
}
