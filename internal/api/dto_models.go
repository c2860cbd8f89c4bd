package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gallery-backend-go/internal/core"
	"gallery-backend-go/internal/middleware"
)

// ErrorResponse is the error body returned by every endpoint. It aliases the
// middleware type so aborts and handler errors share one shape.
type ErrorResponse = middleware.ErrorResponse

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// URLResponse carries a redirect or download URL.
type URLResponse struct {
	URL string `json:"url"`
}

// WebhookAck is the acknowledgement body the billing provider expects.
type WebhookAck struct {
	Received bool `json:"received"`
}

// respondServiceError maps errors from the core services to HTTP status codes.
func respondServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var providerErr *core.ProviderError
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: err.Error()})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User profile not found"})
	case errors.Is(err, core.ErrContentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Content not found"})
	case errors.Is(err, core.ErrSubscriptionRequired):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "An active subscription is required"})
	case errors.Is(err, core.ErrNoSubscription):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No active subscription found"})
	case errors.As(err, &providerErr):
		logger.Error("Billing provider error", zap.String("op", providerErr.Op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: providerErr.Message})
	default:
		logger.Error("Internal server error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// currentUserID returns the authenticated caller, writing a 401 when absent.
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return "", false
	}
	return userID, true
}

// queryLimit parses the optional ?limit= parameter. Zero means "use the default".
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
		return 0, false
	}
	return limit, true
}

func uploadFile(fh *multipart.FileHeader) core.UploadFile {
	return core.UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			return f, nil
		},
	}
}
