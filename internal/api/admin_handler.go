package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gallery-backend-go/internal/core"
	"gallery-backend-go/internal/models"
)

// AdminHandler serves the admin dashboard data.
type AdminHandler struct {
	adminService core.AdminService
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as core.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminService: as, logger: logger}
}

// GetStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListUsers handles GET /api/v1/admin/users?status=&limit=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	users, err := h.adminService.ListUsers(c.Request.Context(), models.SubscriptionStatus(c.Query("status")), limit)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
