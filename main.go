package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"itemvault/internal/config"
	"itemvault/internal/database"
	"itemvault/internal/handlers"
	"itemvault/internal/middleware"
	"itemvault/internal/repositories"
	"itemvault/internal/services"
	"itemvault/pkg/rabbitmq"
)

// NewApp assembles the Fiber application from its dependencies. mqClient may
// be nil, in which case item events are not published.
func NewApp(cfg *config.Settings, userRepo repositories.UserRepository, itemRepo repositories.ItemRepository, mqClient *rabbitmq.Client) *fiber.App {
	// --- Services ---
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTokenTTL)
	itemService := services.NewItemService(itemRepo, mqClient)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(itemService)

	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())

	// CORS falls back to allow-all when no origins are configured. Set
	// explicit origins in production.
	corsConfig := cors.Config{}
	if origins := cfg.CORSList(); len(origins) > 0 {
		corsConfig.AllowOrigins = strings.Join(origins, ",")
		corsConfig.AllowCredentials = true
	} else if cfg.Env != "dev" {
		log.Println("Warning: CORS_ORIGINS is unset, allowing all origins")
	}
	app.Use(cors.New(corsConfig))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	})

	// --- API Routes ---
	// Authentication routes (public)
	authHandler.RegisterRoutes(app)

	// Item routes (require a bearer token)
	protected := app.Group("", middleware.AuthRequired(authService))
	itemHandler.RegisterRoutes(protected)

	return app
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Document Store ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialize MongoDB: %v", err)
	}

	userRepo := repositories.NewMongoUserRepository(db.Database())
	itemRepo := repositories.NewMongoItemRepository(db.Database())

	// The unique email index must exist before the first registration.
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	err = userRepo.EnsureIndexes(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// --- RabbitMQ (optional) ---
	// Without a broker URL the service runs fine; item events are skipped.
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	}

	app := NewApp(cfg, userRepo, itemRepo, mqClient)

	// --- Start HTTP Server ---
	log.Printf("Starting %s on %s", cfg.AppName, cfg.Port)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.Port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := db.Close(shutdownCtx); err != nil {
		log.Printf("Error closing MongoDB connection: %v", err)
	}

	log.Println("Server gracefully stopped")
}
