// Package billing adapts the Stripe API to core.PaymentProvider.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"gallery-backend-go/internal/core"
	"gallery-backend-go/internal/models"
)

// MetadataUserID is the subscription metadata key carrying the user reference.
const MetadataUserID = "userId"

// Config holds the Stripe credentials.
type Config struct {
	SecretKey     string
	WebhookSecret string
	// APIURL overrides the Stripe API base URL. Empty uses Stripe's default.
	APIURL string
}

// StripeProvider implements core.PaymentProvider with stripe-go.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	logger        *zap.Logger
}

// NewStripeProvider builds a Stripe client with its own backends so that no
// package-level stripe state is touched.
func NewStripeProvider(cfg Config, logger *zap.Logger) (*StripeProvider, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, errors.New("stripe secret key is required")
	}
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, errors.New("stripe webhook secret is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	backendCfg := &stripe.BackendConfig{
		LeveledLogger:     logger.Named("stripe").Sugar(),
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIURL != "" {
		backendCfg.URL = stripe.String(strings.TrimRight(cfg.APIURL, "/"))
	}
	backends := &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	}

	return &StripeProvider{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		logger:        logger,
	}, nil
}

// ConstructEvent verifies the Stripe-Signature header and decodes the event.
func (p *StripeProvider) ConstructEvent(payload []byte, signature string) (*core.BillingEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrWebhookSignature, err)
	}

	out := &core.BillingEvent{
		ID:      event.ID,
		Type:    string(event.Type),
		Created: time.Unix(event.Created, 0).UTC(),
	}
	if !strings.HasPrefix(out.Type, "customer.subscription.") {
		return out, nil
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: event %s has no data object", core.ErrWebhookProcessing, event.ID)
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("%w: failed to decode subscription in event %s: %v", core.ErrWebhookProcessing, event.ID, err)
	}
	out.Subscription = snapshot(&sub)
	return out, nil
}

func snapshot(sub *stripe.Subscription) *core.SubscriptionSnapshot {
	s := &core.SubscriptionSnapshot{
		ID:     sub.ID,
		Status: models.SubscriptionStatus(sub.Status),
		UserID: sub.Metadata[MetadataUserID],
	}
	if sub.Customer != nil {
		s.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		s.PriceID = sub.Items.Data[0].Price.ID
	}
	return s
}

// CreateCheckoutSession opens a subscription checkout for one price.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req core.CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(req.UserID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{MetadataUserID: req.UserID},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	sess, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", providerError("create checkout session", err)
	}
	return sess.URL, nil
}

// CreatePortalSession opens the customer portal for an existing customer.
func (p *StripeProvider) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", providerError("create portal session", err)
	}
	return sess.URL, nil
}

// CancelSubscriptionAtPeriodEnd keeps the subscription running until the
// current period ends.
func (p *StripeProvider) CancelSubscriptionAtPeriodEnd(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionParams{CancelAtPeriodEnd: stripe.Bool(true)}
	params.Context = ctx

	if _, err := p.api.Subscriptions.Update(subscriptionID, params); err != nil {
		return providerError("cancel subscription", err)
	}
	return nil
}

// providerError keeps Stripe's human-readable message for the API response.
func providerError(op string, err error) error {
	msg := err.Error()
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Msg != "" {
		msg = serr.Msg
	}
	return &core.ProviderError{Op: op, Message: msg, Err: err}
}
