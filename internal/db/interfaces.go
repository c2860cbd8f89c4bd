package db

import (
	"context"

	"gallery-backend-go/internal/models"
)

// UserRepository defines the storage operations on users/{uid} documents,
// including the nested entitlement record.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// UpdateFields writes the given top-level field paths and refreshes updatedAt.
	UpdateFields(ctx context.Context, userID string, fields map[string]interface{}) error
	// UpdateSubscription merges a provider-sourced change into the subscription
	// sub-object and refreshes subscription.updatedAt. The document must exist.
	UpdateSubscription(ctx context.Context, userID string, change models.SubscriptionChange) error
	FindByCustomerID(ctx context.Context, customerID string) (*models.User, error)
	// List returns users, optionally filtered by subscription status.
	List(ctx context.Context, status models.SubscriptionStatus, limit int) ([]*models.User, error)
	Count(ctx context.Context, status models.SubscriptionStatus) (int64, error)
}

// ContentRepository defines storage operations on contentSets documents.
type ContentRepository interface {
	Create(ctx context.Context, content *models.ContentSet) (string, error) // Returns new content ID
	GetByID(ctx context.Context, contentID string) (*models.ContentSet, error)
	ListPublic(ctx context.Context, limit int) ([]*models.ContentSet, error)
	Delete(ctx context.Context, contentID string) error
	Count(ctx context.Context) (int64, error)
}

// CommentRepository defines storage operations on the comments subcollection.
type CommentRepository interface {
	Create(ctx context.Context, contentID string, comment *models.Comment) (string, error)
	ListByContentID(ctx context.Context, contentID string, limit int) ([]*models.Comment, error)
}

// AnalyticsRepository defines storage operations for analytics events.
type AnalyticsRepository interface {
	Create(ctx context.Context, event *models.AnalyticsEvent) error
}
