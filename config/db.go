// config/db.go
package config

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"

	"github.com/teamsales/salesportal/logger"
)

// ConnectDB opens the Firestore client of the Firebase project.
func ConnectDB(ctx context.Context, fb *FirebaseClients) (*firestore.Client, error) {
	if host := os.Getenv("FIRESTORE_EMULATOR_HOST"); host != "" {
		logger.Get("app").WithField("host", host).Warn("Using Firestore emulator")
	}

	client, err := fb.App.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore connection error: %w", err)
	}

	logger.Get("app").Info("Connected to Firestore")
	return client, nil
}
