package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gallery-backend-go/internal/core"
	"gallery-backend-go/internal/models"
	"gallery-backend-go/internal/observability"
)

// maxWebhookBodyBytes bounds the webhook payload read into memory.
const maxWebhookBodyBytes = 64 << 10

// BillingHandler handles billing-related API endpoints.
type BillingHandler struct {
	billingService core.BillingService
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler. metrics may be nil.
func NewBillingHandler(bs core.BillingService, metrics *observability.Metrics, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: bs, metrics: metrics, logger: logger}
}

// HandleStripeWebhook handles POST /webhook.
// The endpoint is public; Stripe authenticates deliveries with the
// Stripe-Signature header, which the billing service verifies.
func (h *BillingHandler) HandleStripeWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.metrics.ObserveWebhook("", "rejected")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "Webhook Error: payload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Webhook Error: " + err.Error()})
		return
	}

	result, err := h.billingService.HandleWebhook(c.Request.Context(), c.GetHeader("Stripe-Signature"), payload)
	if err != nil {
		var eventType string
		if result != nil {
			eventType = result.EventType
		}
		switch {
		case errors.Is(err, core.ErrWebhookSignature):
			h.logger.Warn("Webhook signature verification failed", zap.Error(err))
			h.metrics.ObserveWebhook("", "rejected")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Webhook Error: " + err.Error()})
		case errors.Is(err, core.ErrWebhookProcessing):
			h.logger.Warn("Webhook event could not be processed", zap.String("eventType", eventType), zap.Error(err))
			h.metrics.ObserveWebhook(eventType, "failed")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Webhook Error: " + err.Error()})
		default:
			h.logger.Error("Failed to persist webhook event", zap.String("eventType", eventType), zap.Error(err))
			h.metrics.ObserveWebhook(eventType, "error")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Webhook Error: failed to update entitlement record"})
		}
		return
	}

	h.metrics.ObserveWebhook(result.EventType, result.Outcome)
	if result.Outcome == core.OutcomeApplied {
		h.metrics.ObserveEntitlementWrite(string(result.Status))
	}
	c.JSON(http.StatusOK, WebhookAck{Received: true})
}

// CreateCheckoutSession handles POST /create-checkout-session.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	var req models.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.ObserveSession("checkout", "invalid")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "priceId and userId are required", Details: err.Error()})
		return
	}

	url, err := h.billingService.CreateCheckoutSession(c.Request.Context(), req.PriceID, req.UserID, c.GetHeader("Origin"))
	if err != nil {
		h.metrics.ObserveSession("checkout", "error")
		respondServiceError(c, h.logger, err)
		return
	}
	h.metrics.ObserveSession("checkout", "ok")
	c.JSON(http.StatusOK, URLResponse{URL: url})
}

// CreatePortalSession handles POST /create-portal-session.
func (h *BillingHandler) CreatePortalSession(c *gin.Context) {
	var req models.PortalSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.ObserveSession("portal", "invalid")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "customerId is required", Details: err.Error()})
		return
	}

	url, err := h.billingService.CreatePortalSession(c.Request.Context(), req.CustomerID, c.GetHeader("Origin"))
	if err != nil {
		h.metrics.ObserveSession("portal", "error")
		respondServiceError(c, h.logger, err)
		return
	}
	h.metrics.ObserveSession("portal", "ok")
	c.JSON(http.StatusOK, URLResponse{URL: url})
}

// CancelSubscription handles POST /api/v1/billing/cancel-subscription.
// The entitlement record changes only once the resulting webhook arrives.
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.billingService.CancelSubscription(c.Request.Context(), userID); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
