package firebase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"gallery-backend-go/internal/config"
)

// Clients bundles the Firebase service handles the server needs. They are
// created once by the process entry point and passed to repositories,
// middleware and services.
type Clients struct {
	Firestore *firestore.Client
	Auth      *auth.Client
	Bucket    *gcs.BucketHandle
	// BucketName is kept for building public object URLs.
	BucketName string
}

// NewClients initializes the Firebase Admin SDK and returns Firestore, Auth
// and Storage handles. Credentials come from a service-account file, a base64
// encoded service-account JSON, or Application Default Credentials.
func NewClients(ctx context.Context, appConfig *config.Config, logger *zap.Logger) (*Clients, error) {
	if appConfig == nil {
		return nil, errors.New("firebase: appConfig cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts, err := credentialOptions(appConfig, logger)
	if err != nil {
		return nil, err
	}

	fbConfig := &firebase.Config{
		ProjectID:     appConfig.FirebaseProjectID,
		StorageBucket: appConfig.FirebaseStorageBucket,
	}
	app, err := firebase.NewApp(ctx, fbConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}
	logger.Info("Firestore client initialized", zap.String("projectID", appConfig.FirebaseProjectID))

	authClient, err := app.Auth(ctx)
	if err != nil {
		fsClient.Close()
		return nil, fmt.Errorf("app.Auth: %w", err)
	}
	logger.Info("Firebase Auth client initialized")

	storageClient, err := app.Storage(ctx)
	if err != nil {
		fsClient.Close()
		return nil, fmt.Errorf("app.Storage: %w", err)
	}
	bucket, err := storageClient.Bucket(appConfig.FirebaseStorageBucket)
	if err != nil {
		fsClient.Close()
		return nil, fmt.Errorf("storage bucket %q: %w", appConfig.FirebaseStorageBucket, err)
	}
	logger.Info("Firebase Storage bucket initialized", zap.String("bucket", appConfig.FirebaseStorageBucket))

	return &Clients{
		Firestore:  fsClient,
		Auth:       authClient,
		Bucket:     bucket,
		BucketName: appConfig.FirebaseStorageBucket,
	}, nil
}

// Close releases the underlying gRPC connections.
func (c *Clients) Close() error {
	if c == nil || c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

func credentialOptions(appConfig *config.Config, logger *zap.Logger) ([]option.ClientOption, error) {
	switch {
	case appConfig.GoogleApplicationCredentials != "":
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			// ADC may still be available in the environment.
			logger.Warn("Credentials file does not exist", zap.String("path", appConfig.GoogleApplicationCredentials))
		}
		logger.Info("Initializing Firebase with credentials file", zap.String("path", appConfig.GoogleApplicationCredentials))
		return []option.ClientOption{option.WithCredentialsFile(appConfig.GoogleApplicationCredentials)}, nil
	case appConfig.FirebaseServiceAccountJSONBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		logger.Info("Initializing Firebase with base64 encoded service account JSON")
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}, nil
	default:
		logger.Info("Initializing Firebase using Application Default Credentials")
		return nil, nil
	}
}
