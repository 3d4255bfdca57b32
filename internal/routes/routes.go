package routes

import (
	"marketplace-chat-api/internal/handlers"
	"marketplace-chat-api/internal/middleware"
	"marketplace-chat-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the REST surface and the websocket gateway onto a router.
func SetupRoutes(hub *realtime.Hub, relay *realtime.Relay) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":      "ok",
			"onlineUsers": relay.Registry().OnlineCount(),
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Users endpoint
		protectedRoutes.GET("/users", handlers.GetAllUsers)
		// Presence query surface for REST collaborators
		protectedRoutes.GET("/presence/:userId", handlers.GetPresence(relay.Registry()))
		protectedRoutes.POST("/presence/status", handlers.BulkPresence(relay.Registry()))
	}

	// Websocket gateway; token accepted via ?token= since browsers cannot
	// set headers on websocket upgrades
	ginRouter.GET("/ws", middleware.JWTAuthMiddleware(), handlers.WebSocketHandler(hub, relay))

	return ginRouter
}
