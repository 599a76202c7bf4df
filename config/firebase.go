package config

import (
	"context"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/teamsales/salesportal/logger"
)

// FirebaseClients bundles the admin SDK clients the service uses.
type FirebaseClients struct {
	App  *firebase.App
	Auth *auth.Client
}

// credentialOption picks base64 credentials first, then a credentials file.
// With neither set the SDK falls back to application default credentials.
func (c *Config) credentialOption() ([]option.ClientOption, error) {
	log := logger.Get("app")
	if c.FirebaseCredentialsBase64 != "" {
		log.Info("Using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(c.FirebaseCredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
		}
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, nil
	}
	if c.GoogleCredentialsFile != "" {
		log.WithField("file", c.GoogleCredentialsFile).Info("Using Firebase credentials file")
		return []option.ClientOption{option.WithCredentialsFile(c.GoogleCredentialsFile)}, nil
	}
	log.Warn("No Firebase credentials configured, using application default credentials")
	return nil, nil
}

// InitFirebase initializes the Firebase Admin SDK and its Auth client.
func InitFirebase(ctx context.Context, cfg *Config) (*FirebaseClients, error) {
	opts, err := cfg.credentialOption()
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase auth: %w", err)
	}
	return &FirebaseClients{App: app, Auth: authClient}, nil
}
