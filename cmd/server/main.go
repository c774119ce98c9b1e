package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/flydrivego/transit-booking-backend/internal/config"
	"github.com/flydrivego/transit-booking-backend/internal/database"
	"github.com/flydrivego/transit-booking-backend/internal/handlers"
	"github.com/flydrivego/transit-booking-backend/internal/services"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting FlyDriveGo Transit Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories need the underlying *sqlx.DB for transactions and Rebind
	postgresDB, ok := db.(*database.PostgresDB)
	if !ok {
		logger.Fatal("Failed to cast database connection to PostgresDB")
	}

	// Initialize repositories
	vehicleRepo := database.NewVehicleRepository(postgresDB.DB)
	inventoryRepo := database.NewSeatInventoryRepository(postgresDB.DB)
	bookingRepo := database.NewBookingRepository(postgresDB.DB)

	// Initialize services
	logger.Info("Initializing services...")
	layoutService := services.NewLayoutService(logger)
	reservationConfig := services.ReservationConfig{HoldTTL: cfg.Reservation.HoldTTL}
	reservationService := services.NewReservationService(vehicleRepo, inventoryRepo, layoutService, reservationConfig, logger)
	bookingService := services.NewBookingService(vehicleRepo, inventoryRepo, bookingRepo, logger)
	reaperService := services.NewReaperService(inventoryRepo, logger)
	paymentGateway := services.NewPaymentGatewayService(&cfg.Payment, logger)
	reconciliationService := services.NewPaymentReconciliationService(bookingRepo, inventoryRepo, paymentGateway, logger)

	if !paymentGateway.IsConfigured() {
		logger.Warn("Payment gateway not configured, payment verification disabled")
	}

	// Initialize and start cron service
	cronService := services.NewCronService(reaperService, cfg.Reservation.SweepSchedule, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}
	logger.Info("Cron service started, expired reservation sweep enabled")

	// Initialize handlers
	vehicleHandler := handlers.NewVehicleHandler(vehicleRepo)
	seatHandler := handlers.NewSeatHandler(reservationService)
	bookingHandler := handlers.NewBookingHandler(bookingService, reconciliationService)
	maintenanceHandler := handlers.NewMaintenanceHandler(cronService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		vehicles := v1.Group("/vehicles")
		{
			vehicles.GET("", vehicleHandler.ListVehicles)
			vehicles.GET("/:id", vehicleHandler.GetVehicle)
			vehicles.GET("/:id/seat-maps/:date", seatHandler.GetSeatMap)
			vehicles.POST("/:id/seat-maps/:date/reserve", seatHandler.ReserveSeats)
		}

		bookings := v1.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.ListBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.GET("/reference/:ref", bookingHandler.GetBookingByReference)
			bookings.PATCH("/:id/payment", bookingHandler.ApplyPaymentResult)
		}

		maintenance := v1.Group("/maintenance")
		{
			maintenance.POST("/sweep-reservations", maintenanceHandler.SweepReservations)
			maintenance.GET("/jobs", maintenanceHandler.GetJobStatus)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop cron service
	cronService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
		}

		entry := logger.WithFields(fields)
		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
