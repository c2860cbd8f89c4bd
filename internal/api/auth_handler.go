package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gallery-backend-go/internal/core"
	"gallery-backend-go/internal/middleware"
)

// AuthHandler handles authentication related API endpoints.
type AuthHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(us core.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{userService: us, logger: logger}
}

// InitializeUserProfile handles the POST /api/v1/users/initialize endpoint.
// The client calls it after a Firebase sign-in so that a profile with an
// inactive entitlement record exists for the user.
func (h *AuthHandler) InitializeUserProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	email := c.GetString(middleware.ContextUserEmail)
	if email == "" {
		h.logger.Warn("InitializeUserProfile: email claim missing", zap.String("userID", userID))
	}

	user, created, err := h.userService.GetOrCreate(c.Request.Context(), userID, email,
		c.GetString(middleware.ContextUserDisplayName), c.GetString(middleware.ContextUserPhotoURL))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}
