package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gallery-backend-go/internal/models"
)

// Keys under which the authenticated caller is stored in the gin context.
const (
	ContextUserID          = "userID"
	ContextUserEmail       = "userEmail"
	ContextUserDisplayName = "userDisplayName"
	ContextUserPhotoURL    = "userPhotoURL"
)

// ErrorResponse is the JSON error body shared by middleware and handlers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// UserLookup loads the profile document used for role checks.
type UserLookup interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
// It panics if verifier is nil, as this is a critical setup dependency.
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("Firebase Auth client is not initialized for AuthMiddleware")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// VerifyToken rejects requests without a valid Firebase ID token in the
// Authorization header. On success the caller's claims are set in the context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, msg := bearerToken(c.GetHeader("Authorization"))
		if msg != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: msg})
			return
		}

		token, err := m.verifier.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			m.logger.Warn("Error verifying Firebase ID token", zap.Error(err), zap.String("path", c.Request.URL.Path))
			// Specific error details are logged server-side only.
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		setClaims(c, token)
		c.Next()
	}
}

// OptionalToken sets the caller's claims when a valid token is present and
// lets anonymous requests through otherwise.
func (m *AuthMiddleware) OptionalToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken, msg := bearerToken(c.GetHeader("Authorization"))
		if msg == "" {
			token, err := m.verifier.VerifyIDToken(c.Request.Context(), idToken)
			if err != nil {
				m.logger.Debug("Ignoring invalid optional token", zap.Error(err))
			} else {
				setClaims(c, token)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after VerifyToken. It allows only users whose profile
// carries the admin role.
func (m *AuthMiddleware) RequireAdmin(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(ContextUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "User not authenticated"})
			return
		}
		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil || !user.IsAdmin() {
			if err != nil {
				m.logger.Warn("Admin check failed", zap.String("userID", userID), zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Admin access required"})
			return
		}
		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header. A non-empty
// message describes why the header was rejected.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "Authorization header is required"
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", "Authorization header format must be 'Bearer {token}'"
	}
	return parts[1], ""
}

func setClaims(c *gin.Context, token *auth.Token) {
	c.Set(ContextUserID, token.UID)
	// Firebase populates these from the token if they exist.
	if email, ok := token.Claims["email"].(string); ok {
		c.Set(ContextUserEmail, email)
	}
	if name, ok := token.Claims["name"].(string); ok {
		c.Set(ContextUserDisplayName, name)
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		c.Set(ContextUserPhotoURL, picture)
	}
}
