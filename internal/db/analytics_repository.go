package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"gallery-backend-go/internal/models"
)

const analyticsCollection = "analytics"

type firestoreAnalyticsRepository struct {
	client *firestore.Client
}

// NewFirestoreAnalyticsRepository creates an AnalyticsRepository using Firestore.
func NewFirestoreAnalyticsRepository(client *firestore.Client) AnalyticsRepository {
	if client == nil {
		panic("Firestore client is not initialized for AnalyticsRepository")
	}
	return &firestoreAnalyticsRepository{client: client}
}

// Create appends an event with an auto-generated ID and a server timestamp.
func (r *firestoreAnalyticsRepository) Create(ctx context.Context, event *models.AnalyticsEvent) error {
	docRef := r.client.Collection(analyticsCollection).NewDoc()
	event.ID = docRef.ID
	if _, err := docRef.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to record analytics event '%s': %w", event.Action, err)
	}
	return nil
}
