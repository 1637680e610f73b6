package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pageza/platewise/backend/internal/api"
	"github.com/pageza/platewise/backend/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(
	authHandler *api.AuthHandler,
	groceryHandler *api.GroceryHandler,
	inventoryHandler *api.InventoryHandler,
	planHandler *api.PlanHandler,
	settingsHandler *api.SettingsHandler,
	agentHandler *api.AgentHandler,
	validator middleware.TokenValidator,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://frontend:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "Accept", "Origin"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Auth form flows
	authHandler.RegisterRoutes(router)

	// Form posts and JSON lists per surface
	groceryHandler.RegisterRoutes(router, validator)
	inventoryHandler.RegisterRoutes(router, validator)
	planHandler.RegisterRoutes(router, validator)
	settingsHandler.RegisterRoutes(router, validator)

	// Diagnostics and ingest listing are authenticated but not rate limited
	agentHandler.RegisterRoutes(router, validator)

	// Model-calling routes sit behind auth and the rate limiter
	ai := router.Group("/api/ai")
	ai.Use(middleware.AuthMiddleware(validator))
	if rateLimiter != nil {
		ai.Use(rateLimiter.RateLimitMiddleware())
	}
	agentHandler.RegisterAIRoutes(ai)

	return router
}
