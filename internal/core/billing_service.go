package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gallery-backend-go/internal/db"
	"gallery-backend-go/internal/models"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrBillingProvider     = errors.New("billing provider operation failed")
	ErrWebhookProcessing   = errors.New("webhook processing failed")
	ErrWebhookSignature    = errors.New("webhook signature verification failed")
	ErrNoSubscription      = errors.New("user has no subscription")
	ErrEntitlementNotSaved = errors.New("entitlement record update failed")
)

// Subscription lifecycle events reconciled into the entitlement record.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Webhook outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeIgnored   = "ignored"
	OutcomeDuplicate = "duplicate"
)

// ProviderError carries the billing provider's own message so it can be shown
// to the caller verbatim.
type ProviderError struct {
	Op      string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is makes every ProviderError match ErrBillingProvider.
func (e *ProviderError) Is(target error) bool { return target == ErrBillingProvider }

// WebhookResult describes what happened to an accepted event. Status is the
// subscription status written and is only set when Outcome is applied.
type WebhookResult struct {
	EventID   string
	EventType string
	UserID    string
	Status    models.SubscriptionStatus
	Outcome   string
}

// BillingConfig holds the settings BillingService needs.
type BillingConfig struct {
	// ClientURL is used to build redirect URLs when the request has no Origin.
	ClientURL string
}

type billingService struct {
	provider PaymentProvider
	userRepo db.UserRepository
	ledger   EventLedger
	cfg      BillingConfig
	logger   *zap.Logger
}

// NewBillingService creates a BillingService. ledger may be nil, in which case
// every verified event is applied.
func NewBillingService(provider PaymentProvider, userRepo db.UserRepository, ledger EventLedger, cfg BillingConfig, logger *zap.Logger) BillingService {
	if ledger == nil {
		ledger = noopLedger{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &billingService{
		provider: provider,
		userRepo: userRepo,
		ledger:   ledger,
		cfg:      cfg,
		logger:   logger,
	}
}

func isSubscriptionEvent(eventType string) bool {
	switch eventType {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		return true
	}
	return false
}

// HandleWebhook verifies and applies one provider event. Subscription events
// overwrite the entitlement record (last write wins); every other event type
// is acknowledged without a write. Once the signature is verified the result
// carries the event ID and type even when an error is returned.
func (s *billingService) HandleWebhook(ctx context.Context, signature string, payload []byte) (*WebhookResult, error) {
	event, err := s.provider.ConstructEvent(payload, signature)
	if err != nil {
		return nil, err
	}
	result := &WebhookResult{EventID: event.ID, EventType: event.Type}

	if !isSubscriptionEvent(event.Type) {
		s.logger.Info("Unhandled webhook event type", zap.String("eventID", event.ID), zap.String("eventType", event.Type))
		result.Outcome = OutcomeIgnored
		return result, nil
	}
	sub := event.Subscription
	if sub == nil || sub.ID == "" {
		return result, fmt.Errorf("%w: event %s carries no subscription", ErrWebhookProcessing, event.ID)
	}

	seen, err := s.ledger.Seen(ctx, event.ID)
	if err != nil {
		s.logger.Warn("Event ledger lookup failed; applying event", zap.String("eventID", event.ID), zap.Error(err))
	}
	if seen {
		s.logger.Info("Duplicate webhook event skipped", zap.String("eventID", event.ID), zap.String("eventType", event.Type))
		result.Outcome = OutcomeDuplicate
		return result, nil
	}

	userID, err := s.resolveUserID(ctx, sub)
	if err != nil {
		return result, err
	}
	result.UserID = userID

	change := models.SubscriptionChange{
		Status:         sub.Status,
		CustomerID:     sub.CustomerID,
		SubscriptionID: sub.ID,
		PriceID:        sub.PriceID,
	}
	if err := s.userRepo.UpdateSubscription(ctx, userID, change); err != nil {
		return result, fmt.Errorf("%w: user '%s', event %s: %v", ErrEntitlementNotSaved, userID, event.ID, err)
	}

	if err := s.ledger.Remember(ctx, event.ID); err != nil {
		s.logger.Warn("Failed to record processed webhook event", zap.String("eventID", event.ID), zap.Error(err))
	}

	s.logger.Info("Entitlement record updated",
		zap.String("eventID", event.ID),
		zap.String("eventType", event.Type),
		zap.String("userID", userID),
		zap.String("subscriptionID", sub.ID),
		zap.String("status", string(sub.Status)),
	)
	result.Status = sub.Status
	result.Outcome = OutcomeApplied
	return result, nil
}

// resolveUserID prefers the user reference written into subscription metadata
// at checkout and falls back to the user already linked to the customer.
func (s *billingService) resolveUserID(ctx context.Context, sub *SubscriptionSnapshot) (string, error) {
	if sub.UserID != "" {
		return sub.UserID, nil
	}
	if sub.CustomerID == "" {
		return "", fmt.Errorf("%w: subscription %s has no user reference", ErrWebhookProcessing, sub.ID)
	}
	user, err := s.userRepo.FindByCustomerID(ctx, sub.CustomerID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: no user linked to customer %s", ErrWebhookProcessing, sub.CustomerID)
		}
		return "", fmt.Errorf("%w: %v", ErrEntitlementNotSaved, err)
	}
	return user.ID, nil
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, priceID, userID, origin string) (string, error) {
	priceID = strings.TrimSpace(priceID)
	userID = strings.TrimSpace(userID)
	if priceID == "" || userID == "" {
		return "", fmt.Errorf("%w: priceId and userId are required", ErrInvalidInput)
	}
	base := s.baseURL(origin)

	url, err := s.provider.CreateCheckoutSession(ctx, CheckoutRequest{
		PriceID:    priceID,
		UserID:     userID,
		SuccessURL: base + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  base + "/canceled",
	})
	if err != nil {
		s.logger.Warn("Checkout session creation failed", zap.String("userID", userID), zap.String("priceID", priceID), zap.Error(err))
		return "", err
	}
	s.logger.Info("Checkout session created", zap.String("userID", userID), zap.String("priceID", priceID))
	return url, nil
}

func (s *billingService) CreatePortalSession(ctx context.Context, customerID, origin string) (string, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return "", fmt.Errorf("%w: customerId is required", ErrInvalidInput)
	}

	url, err := s.provider.CreatePortalSession(ctx, customerID, s.baseURL(origin)+"/account")
	if err != nil {
		s.logger.Warn("Portal session creation failed", zap.String("customerID", customerID), zap.Error(err))
		return "", err
	}
	return url, nil
}

func (s *billingService) CancelSubscription(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return fmt.Errorf("failed to get user by ID '%s': %w", userID, err)
	}
	if user.Subscription.SubscriptionID == "" {
		return fmt.Errorf("%w: user '%s'", ErrNoSubscription, userID)
	}

	if err := s.provider.CancelSubscriptionAtPeriodEnd(ctx, user.Subscription.SubscriptionID); err != nil {
		return err
	}
	s.logger.Info("Subscription set to cancel at period end",
		zap.String("userID", userID),
		zap.String("subscriptionID", user.Subscription.SubscriptionID),
	)
	return nil
}

func (s *billingService) baseURL(origin string) string {
	base := strings.TrimSpace(origin)
	if base == "" || base == "null" {
		base = s.cfg.ClientURL
	}
	return strings.TrimRight(base, "/")
}
