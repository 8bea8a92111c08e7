package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/localpros/backend/docs"
	"github.com/localpros/backend/internal/config"
	"github.com/localpros/backend/internal/database"
	"github.com/localpros/backend/internal/handlers"
	mW "github.com/localpros/backend/internal/middleware"
	"github.com/localpros/backend/internal/notify"
	"github.com/localpros/backend/internal/processor"
	"github.com/localpros/backend/internal/services"
)

// @title LocalPros Marketplace API
// @version 1.0
// @description Booking lifecycle and financial reconciliation for the LocalPros services marketplace
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize Swagger docs
	docs.SwaggerInfo.Title = "LocalPros Marketplace API"
	docs.SwaggerInfo.Description = "Booking lifecycle and financial reconciliation for the LocalPros services marketplace"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = "localhost:8080"
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Platform constants are loaded once; a broken fee schedule must never boot.
	platformCfg := config.LoadPlatformConfig()
	if err := platformCfg.Validate(); err != nil {
		log.Fatalf("Invalid platform configuration: %v", err)
	}

	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	var notifier notify.Notifier = notify.LogNotifier{}
	if platformCfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(platformCfg.AMQPURL, platformCfg.NotifyExchange)
		if err != nil {
			log.Printf("RabbitMQ unavailable, notifications will be logged only: %v", err)
		} else {
			notifier = amqpNotifier
		}
	}
	defer notifier.Close()

	fees := services.NewFeeCalculator(platformCfg)
	idem := services.NewIdempotencyService(redisClient)
	processorClient := processor.NewHTTPClient(platformCfg.ProcessorBaseURL, platformCfg.ProcessorSecretKey)

	bookingService := services.NewBookingService(db, platformCfg, fees, idem, processorClient, notifier)
	webhookService := services.NewWebhookService(db, platformCfg, fees, processorClient, notifier)
	earningsService := services.NewEarningsService(db, platformCfg, idem, processorClient, notifier)
	auditService := services.NewAuditService(db, platformCfg, fees)
	qrHandler := handlers.NewCheckoutQRHandler(services.NewCheckoutQRService(db, redisClient, platformCfg))

	limiter := mW.NewRateLimiter(redisClient, platformCfg.RateLimitWindow)
	limitDefault := limiter.Limit("default", platformCfg.RateLimitDefault)
	limitPayment := limiter.Limit("payment", platformCfg.RateLimitPayment)

	// Background payout reconciliation
	syncCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()
	go webhookService.RunPayoutSyncLoop(syncCtx)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Idempotent-Replay", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required): the webhook authenticates with
		// its own HMAC signature instead of a bearer token.
		r.Post("/webhooks/processor", webhookService.HandleProcessorEvent)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.With(limitDefault).Post("/bookings", bookingService.CreateBooking)
			r.Get("/bookings", bookingService.ListBookings)
			r.Get("/bookings/{bookingId}", bookingService.GetBooking)

			r.With(limitDefault).Post("/bookings/{bookingId}/accept", bookingService.AcceptBooking)
			r.With(limitDefault).Post("/bookings/{bookingId}/decline", bookingService.DeclineBooking)
			r.With(limitDefault).Post("/bookings/{bookingId}/cancel", bookingService.CancelBooking)
			r.With(limitDefault).Post("/bookings/{bookingId}/quote", bookingService.SetQuote)
			r.With(limitDefault).Post("/bookings/{bookingId}/reschedule", bookingService.RescheduleBooking)
			r.With(limitDefault).Post("/bookings/{bookingId}/complete", bookingService.CompleteBooking)
			r.With(limitDefault).Post("/bookings/{bookingId}/dispute", bookingService.DisputeBooking)
			r.With(limitPayment).Post("/bookings/{bookingId}/pay", bookingService.PayBooking)
			r.Get("/bookings/{bookingId}/checkout-qr", qrHandler.GetCheckoutQR)

			r.Get("/earnings/summary", earningsService.GetSummary)
			r.Get("/earnings", earningsService.ListEarnings)
			r.With(limitPayment).Post("/earnings/payout-request", earningsService.RequestPayout)
			r.Get("/payouts", earningsService.ListPayouts)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(mW.RequireAdmin)

				r.Post("/bookings/{bookingId}/resolve", bookingService.ResolveDispute)
				r.Post("/admin/audit/run", auditService.RunAudit)
				r.Get("/admin/audit/findings", auditService.ListFindings)
				r.Post("/admin/payouts/sync", webhookService.SyncPayoutsHandler)
			})
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	stopSync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
