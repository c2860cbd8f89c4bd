package core

import (
	"context"
	"io"
	"time"

	"firebase.google.com/go/v4/auth"

	"gallery-backend-go/internal/models"
)

// BillingService reconciles billing-provider webhooks into entitlement records
// and forwards session creation to the provider.
type BillingService interface {
	HandleWebhook(ctx context.Context, signature string, payload []byte) (*WebhookResult, error)
	// CreateCheckoutSession returns the provider-hosted checkout URL.
	CreateCheckoutSession(ctx context.Context, priceID, userID, origin string) (string, error)
	// CreatePortalSession returns the provider-hosted customer portal URL.
	CreatePortalSession(ctx context.Context, customerID, origin string) (string, error)
	// CancelSubscription asks the provider to cancel the user's subscription at
	// the end of the current period. The entitlement record is updated later by
	// the resulting webhook.
	CancelSubscription(ctx context.Context, userID string) error
}

// UserService defines the interface for user-profile and entitlement reads.
type UserService interface {
	// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates
	// one with an inactive subscription.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)
	UpdatePreferences(ctx context.Context, userID string, req models.UpdatePreferencesRequest) error
	UploadAvatar(ctx context.Context, userID string, file UploadFile) (string, error)
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
}

// ContentService defines gallery content and comment operations.
type ContentService interface {
	Upload(ctx context.Context, uploaderID string, files []UploadFile, meta models.ContentMetadata) ([]*models.ContentSet, error)
	// Get returns a content set. Non-public sets require viewerID to belong to
	// an entitled subscriber or an admin.
	Get(ctx context.Context, viewerID, contentID string) (*models.ContentSet, error)
	ListPublic(ctx context.Context, limit int) ([]*models.ContentSet, error)
	Delete(ctx context.Context, actorID, contentID string) error
	AddComment(ctx context.Context, userID, contentID, text string) (*models.Comment, error)
	ListComments(ctx context.Context, contentID string, limit int) ([]*models.Comment, error)
}

// AnalyticsService defines the interface for tracking user actions.
type AnalyticsService interface {
	Track(ctx context.Context, userID, action string, metadata map[string]interface{}) error
}

// AdminService serves the admin dashboard.
type AdminService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	ListUsers(ctx context.Context, status models.SubscriptionStatus, limit int) ([]*models.User, error)
}

// PaymentProvider is the billing provider as seen by BillingService.
type PaymentProvider interface {
	// ConstructEvent verifies the signature over payload and decodes the event.
	// Signature failures wrap ErrWebhookSignature; undecodable payloads wrap
	// ErrWebhookProcessing.
	ConstructEvent(payload []byte, signature string) (*BillingEvent, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	CancelSubscriptionAtPeriodEnd(ctx context.Context, subscriptionID string) error
}

// EventLedger remembers which provider events were already applied.
type EventLedger interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string) error
}

// IdentityUpdater updates the identity-provider profile of a user.
// *auth.Client satisfies it.
type IdentityUpdater interface {
	UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error)
}

// BillingEvent is a verified provider event.
type BillingEvent struct {
	ID      string
	Type    string
	Created time.Time
	// Subscription is set for customer.subscription.* events.
	Subscription *SubscriptionSnapshot
}

// SubscriptionSnapshot is the provider's view of a subscription carried by an event.
type SubscriptionSnapshot struct {
	ID         string
	Status     models.SubscriptionStatus
	CustomerID string
	PriceID    string
	// UserID is the user reference stored in subscription metadata at checkout.
	UserID string
}

// CheckoutRequest describes a subscription checkout session.
type CheckoutRequest struct {
	PriceID    string
	UserID     string
	SuccessURL string
	CancelURL  string
}

// UploadFile is one file of a multipart upload.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type noopLedger struct{}

func (noopLedger) Seen(context.Context, string) (bool, error) { return false, nil }
func (noopLedger) Remember(context.Context, string) error     { return nil }
