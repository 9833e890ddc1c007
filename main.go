package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/UrbanMistri/urbanmistri-backend/database"
	"github.com/UrbanMistri/urbanmistri-backend/internal/jobs"
	"github.com/UrbanMistri/urbanmistri-backend/internal/models"
	"github.com/UrbanMistri/urbanmistri-backend/internal/ratelimit"
	"github.com/UrbanMistri/urbanmistri-backend/internal/routes"
	"github.com/UrbanMistri/urbanmistri-backend/internal/services"
	"github.com/UrbanMistri/urbanmistri-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Profile{},
			&models.Booking{},
			&models.Slot{},
			&models.WalletTransaction{},
			&models.PromoCode{},
			&models.OTPChallenge{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Notifier: Twilio SMS when configured, log fallback otherwise
	notifier := services.NewNotifierFromEnv()

	// Session tokens
	sessions, err := services.NewSessionService()
	if err != nil {
		log.Fatal("Failed to initialize session service:", err)
	}

	// Rate limiting: Redis-backed when REDIS_URL is set so windows survive
	// restarts across instances, process-local otherwise
	var limiter ratelimit.Counter
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL:", err)
		}
		limiter = ratelimit.NewRedisCounter(redis.NewClient(opts))
		log.Println("✅ Using Redis-backed rate limiting")
	} else {
		limiter = ratelimit.NewMemoryCounter()
		log.Println("⚠️  Using in-process rate limiting (single instance only)")
	}

	// Core services
	dispatcher := services.NewEventDispatcher(store, notifier)
	dispatcher.Start()

	otpService := services.NewOTPService(store, notifier)
	pricingService := services.NewPricingService(store)
	walletService := services.NewWalletService(store)
	slotService := services.NewSlotService(store)
	matchingService := services.NewMatchingService(store, dispatcher)
	bookingService := services.NewBookingService(store, pricingService, walletService,
		slotService, matchingService, dispatcher)
	paymentService := services.NewPaymentService(store, notifier)

	// Background housekeeping
	cleanupJob := jobs.NewCleanupJob(store)
	cleanupJob.Start()

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "UrbanMistri Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Admin-Key",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// Health check endpoint with database status
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status":  status,
			"service": "UrbanMistri Backend API",
			"version": "1.0.0",
			"storage": getStorageType(),
		})
	})

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{
		Store:    store,
		OTP:      otpService,
		Sessions: sessions,
		Bookings: bookingService,
		Matching: matchingService,
		Payments: paymentService,
		Limiter:  limiter,
	})

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		cleanupJob.Stop()
		dispatcher.Stop()
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 UrbanMistri Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
