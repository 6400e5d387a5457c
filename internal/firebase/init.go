package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"io.winapps.starlight/internal/config"
)

// Clients bundles the Firebase services the server talks to
type Clients struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
	Messaging *messaging.Client

	// Bucket is nil when no storage bucket is configured
	Bucket     *storage.BucketHandle
	BucketName string
}

// InitFirebase initializes the Firebase app and the clients built on it
func InitFirebase(ctx context.Context, cfg config.Config) (*Clients, error) {
	fbConfig := &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.FirebaseStorageBucket,
	}

	var opts []option.ClientOption
	if cfg.FirebaseServiceAccountPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseServiceAccountPath))
	}

	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	clients := &Clients{App: app}

	if clients.Auth, err = app.Auth(ctx); err != nil {
		return nil, fmt.Errorf("failed to get Firebase Auth client: %w", err)
	}
	if clients.Firestore, err = app.Firestore(ctx); err != nil {
		return nil, fmt.Errorf("failed to get Firestore client: %w", err)
	}
	if clients.Messaging, err = app.Messaging(ctx); err != nil {
		return nil, fmt.Errorf("failed to get Messaging client: %w", err)
	}

	if cfg.FirebaseStorageBucket != "" {
		storageClient, err := app.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Storage client: %w", err)
		}
		if clients.Bucket, err = storageClient.Bucket(cfg.FirebaseStorageBucket); err != nil {
			return nil, fmt.Errorf("failed to open bucket %s: %w", cfg.FirebaseStorageBucket, err)
		}
		clients.BucketName = cfg.FirebaseStorageBucket
	}

	return clients, nil
}

// Close releases the long-lived connections
func (c *Clients) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}
