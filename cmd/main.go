package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"invoicing-service/internal/clients"
	"invoicing-service/internal/config"
	"invoicing-service/internal/geocoding"
	"invoicing-service/internal/handlers"
	"invoicing-service/internal/idempotency"
	"invoicing-service/internal/jurisdiction"
	"invoicing-service/internal/middleware"
	"invoicing-service/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "development" {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	// Connect to Redis (idempotency store)
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)

	store := idempotency.NewRedisStore(redisClient)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		log.Printf("Warning: Redis ping failed: %v (events will error until it recovers)", err)
	} else {
		log.Println("✓ Connected to Redis")
	}
	cancel()

	gate := idempotency.NewGate(store, logger)

	// Jurisdiction resolution
	geocoder := geocoding.NewNominatimClient(cfg.Nominatim.BaseURL, cfg.Nominatim.UserAgent, cfg.Nominatim.Timeout, logger)
	resolver := jurisdiction.NewResolver(geocoder, logger)

	// Billing client with retry policy
	smartbill := clients.NewSmartBillClient(cfg.SmartBill, cfg.Invoice, logger)
	billing := clients.NewRetrySmartBill(smartbill, cfg.Retry, logger)

	mailer := clients.NewSMTPMailer(cfg.SMTP, logger)
	alerter := clients.NewOpsAlerter(cfg.AlertWebhookURL, logger)

	verifier := services.NewStripeVerifier(cfg.StripeWebhookSecret)
	webhookService := services.NewWebhookService(cfg.Invoice, verifier, gate, resolver, billing, mailer, alerter, logger)
	webhookHandler := handlers.NewWebhookHandler(webhookService)

	// Setup router
	router := setupRouter(webhookHandler)

	// Start server
	log.Printf("Invoicing Service starting on port %s (env: %s, test mode: %v)",
		cfg.Port, cfg.Environment, cfg.Invoice.TestMode)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter configures the HTTP router
func setupRouter(webhookHandler *handlers.WebhookHandler) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.SecurityHeaders())

	router.GET("/", func(c *gin.Context) {
		c.String(200, "Welcome to the Stripe-SmartBill invoicing service.")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "invoicing-service",
		})
	})

	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/stripe", webhookHandler.HandleStripeWebhook)
	}

	return router
}
