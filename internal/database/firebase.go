// internal/database/firebase.go
package database

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/frima-market/frima-gateway/internal/config"
)

var ErrFirebaseDisabled = errors.New("firebase is not configured")

// Firebase holds the identity and document-store clients of one project.
type Firebase struct {
	Auth      *fbauth.Client
	Firestore *firestore.Client
}

// NewFirebase connects to the configured project. Without a project id it
// returns ErrFirebaseDisabled.
func NewFirebase(ctx context.Context, cfg config.FirebaseConfig) (*Firebase, error) {
	if cfg.ProjectID == "" {
		return nil, ErrFirebaseDisabled
	}

	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}

	store, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firestore: %w", err)
	}

	return &Firebase{Auth: authClient, Firestore: store}, nil
}

func (f *Firebase) Close() error {
	return f.Firestore.Close()
}
