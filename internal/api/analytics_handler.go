package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gallery-backend-go/internal/core"
	"gallery-backend-go/internal/models"
)

// AnalyticsHandler records front-end analytics events.
type AnalyticsHandler struct {
	analyticsService core.AnalyticsService
	logger           *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(as core.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: as, logger: logger}
}

// TrackEvent handles POST /api/v1/analytics/events.
func (h *AnalyticsHandler) TrackEvent(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	if err := h.analyticsService.Track(c.Request.Context(), userID, req.Action, req.Metadata); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "Event recorded"})
}
