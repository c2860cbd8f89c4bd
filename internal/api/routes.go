package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gallery-backend-go/internal/core"
	"gallery-backend-go/internal/middleware"
	"gallery-backend-go/internal/observability"
)

// Services bundles what the route handlers depend on.
type Services struct {
	Users     core.UserService
	Billing   core.BillingService
	Content   core.ContentService
	Analytics core.AnalyticsService
	Admin     core.AdminService
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (request id, logging, recovery, metrics, CORS) is expected
// to be applied to router before this function is called.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	verifier middleware.TokenVerifier,
	svc Services,
	metrics *observability.Metrics,
) {
	authMW := middleware.NewAuthMiddleware(verifier, logger)

	authHandler := NewAuthHandler(svc.Users, logger)
	userHandler := NewUserHandler(svc.Users, logger)
	billingHandler := NewBillingHandler(svc.Billing, metrics, logger)
	contentHandler := NewContentHandler(svc.Content, logger)
	analyticsHandler := NewAnalyticsHandler(svc.Analytics, logger)
	adminHandler := NewAdminHandler(svc.Admin, logger)

	// --- Billing provider endpoints ---
	// Public: the webhook is authenticated by its signature, and the session
	// endpoints carry the user reference in the body.
	router.POST("/webhook", billingHandler.HandleStripeWebhook)
	router.POST("/create-checkout-session", billingHandler.CreateCheckoutSession)
	router.POST("/create-portal-session", billingHandler.CreatePortalSession)

	apiV1 := router.Group("/api/v1")
	{
		userGroup := apiV1.Group("/users", authMW.VerifyToken())
		{
			// Called after client-side Firebase login/signup to ensure the profile exists.
			userGroup.POST("/initialize", authHandler.InitializeUserProfile)
			userGroup.GET("/me", userHandler.GetCurrentUserProfile)
			userGroup.PUT("/me", userHandler.UpdateCurrentUserProfile)
			userGroup.POST("/me/avatar", userHandler.UploadAvatar)
			userGroup.PUT("/me/preferences", userHandler.UpdatePreferences)
			userGroup.GET("/me/subscription", userHandler.GetSubscription)
		}

		apiV1.POST("/billing/cancel-subscription", authMW.VerifyToken(), billingHandler.CancelSubscription)

		contentGroup := apiV1.Group("/content")
		{
			contentGroup.GET("", authMW.OptionalToken(), contentHandler.ListContent)
			contentGroup.GET("/:id", authMW.OptionalToken(), contentHandler.GetContent)
			contentGroup.POST("", authMW.VerifyToken(), authMW.RequireAdmin(svc.Users), contentHandler.UploadContent)
			contentGroup.DELETE("/:id", authMW.VerifyToken(), authMW.RequireAdmin(svc.Users), contentHandler.DeleteContent)

			contentGroup.GET("/:id/comments", contentHandler.ListComments)
			contentGroup.POST("/:id/comments", authMW.VerifyToken(), contentHandler.AddComment)
		}

		apiV1.POST("/analytics/events", authMW.VerifyToken(), analyticsHandler.TrackEvent)

		adminGroup := apiV1.Group("/admin", authMW.VerifyToken(), authMW.RequireAdmin(svc.Users))
		{
			adminGroup.GET("/stats", adminHandler.GetStats)
			adminGroup.GET("/users", adminHandler.ListUsers)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	logger.Info("API routes configured successfully")
}
