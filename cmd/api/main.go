package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/platewise/backend/config"
	"github.com/pageza/platewise/backend/internal/agent"
	"github.com/pageza/platewise/backend/internal/ai"
	"github.com/pageza/platewise/backend/internal/api"
	"github.com/pageza/platewise/backend/internal/database"
	"github.com/pageza/platewise/backend/internal/middleware"
	"github.com/pageza/platewise/backend/internal/router"
	"github.com/pageza/platewise/backend/internal/server"
	"github.com/pageza/platewise/backend/internal/service"
)

func main() {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Rate limiting degrades to disabled when Redis is unreachable
	var rateLimiter *middleware.RateLimiter
	if redisClient, err := database.NewRedisClient(cfg); err != nil {
		log.Printf("Redis unavailable, AI rate limiting disabled: %v", err)
	} else {
		rateLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    time.Minute,
			Limit:     20,
			KeyPrefix: "ratelimit:ai",
		})
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}
	if s3Config == nil {
		log.Println("S3 bucket not configured, ingest archiving disabled")
	}

	aiClient := ai.NewClient()

	authService := service.NewAuthService(db, cfg.JWTSecret)
	ingestService := service.NewIngestService(db, aiClient, s3Config)
	dispatcher := agent.NewDispatcher(db)

	authHandler := api.NewAuthHandler(authService)
	groceryHandler := api.NewGroceryHandler(db)
	inventoryHandler := api.NewInventoryHandler(db)
	planHandler := api.NewPlanHandler(db)
	settingsHandler := api.NewSettingsHandler(db)
	agentHandler := api.NewAgentHandler(db, aiClient, ingestService, dispatcher, cfg, s3Config)

	r := router.SetupRouter(
		authHandler,
		groceryHandler,
		inventoryHandler,
		planHandler,
		settingsHandler,
		agentHandler,
		authService,
		rateLimiter,
	)

	srv := server.New(r, cfg.ServerHost, cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
