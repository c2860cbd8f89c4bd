package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"gallery-backend-go/internal/api"
	"gallery-backend-go/internal/billing"
	"gallery-backend-go/internal/blob"
	"gallery-backend-go/internal/cache"
	"gallery-backend-go/internal/config"
	"gallery-backend-go/internal/core"
	"gallery-backend-go/internal/db"
	"gallery-backend-go/internal/firebase"
	"gallery-backend-go/internal/middleware"
	"gallery-backend-go/internal/observability"
)

func main() {
	// --- 1. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	// --- 2. Initialize Logger (Zap) ---
	zapLogger, err := newLogger(appConfig)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync() // Flushes buffer, if any.
	zapLogger.Info("Application configuration loaded successfully.", zap.String("ginMode", appConfig.GinMode))

	// --- 3. Initialize Firebase Admin SDK (Firestore, Auth, Storage) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	clients, err := firebase.NewClients(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()

	// --- 4. Optional webhook event ledger ---
	var ledger core.EventLedger
	if appConfig.RedisURL != "" {
		redisLedger, err := cache.NewRedisEventLedger(initCtx, appConfig.RedisURL, appConfig.WebhookEventTTL)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis", zap.Error(err))
		}
		defer redisLedger.Close()
		ledger = redisLedger
		zapLogger.Info("Webhook event ledger enabled", zap.Duration("ttl", appConfig.WebhookEventTTL))
	} else {
		zapLogger.Info("REDIS_URL not set; duplicate webhook deliveries are applied again")
	}

	// --- 5. Billing provider ---
	stripeProvider, err := billing.NewStripeProvider(billing.Config{
		SecretKey:     appConfig.StripeSecretKey,
		WebhookSecret: appConfig.StripeWebhookSecret,
		APIURL:        appConfig.StripeAPIURL,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Stripe client", zap.Error(err))
	}

	// --- 6. Initialize Repositories ---
	userRepo := db.NewFirestoreUserRepository(clients.Firestore)
	contentRepo := db.NewFirestoreContentRepository(clients.Firestore, zapLogger)
	commentRepo := db.NewFirestoreCommentRepository(clients.Firestore)
	analyticsRepo := db.NewFirestoreAnalyticsRepository(clients.Firestore)
	store := blob.NewBucketStore(clients.Bucket, clients.BucketName)

	// --- 7. Initialize Services ---
	analyticsService := core.NewAnalyticsService(analyticsRepo)
	services := api.Services{
		Users: core.NewUserService(userRepo, clients.Auth, store, zapLogger),
		Billing: core.NewBillingService(stripeProvider, userRepo, ledger,
			core.BillingConfig{ClientURL: appConfig.ClientURL}, zapLogger),
		Content:   core.NewContentService(contentRepo, commentRepo, userRepo, store, analyticsService, zapLogger),
		Analytics: analyticsService,
		Admin:     core.NewAdminService(userRepo, contentRepo),
	}
	zapLogger.Info("Core services initialized successfully.")

	// --- 8. Setup Gin HTTP Engine ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	// Order matters: the request id must exist before the logger and recovery read it.
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.Metrics(metrics))
	router.Use(middleware.CORSMiddleware(appConfig.ClientURL))

	// --- 9. Setup API Routes ---
	api.SetupRoutes(router, zapLogger, clients.Auth, services, metrics)

	// --- 10. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 11. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
		return
	}

	zapLogger.Info("Server exiting gracefully.")
}

// newLogger returns a production JSON logger in release mode and a
// human-readable development logger otherwise.
func newLogger(appConfig *config.Config) (*zap.Logger, error) {
	if appConfig.IsRelease() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
