package main

import (
	"log"
	"os"

	"marketplace-chat-api/internal/database"
	"marketplace-chat-api/internal/presence"
	"marketplace-chat-api/internal/realtime"
	"marketplace-chat-api/internal/routes"
	"marketplace-chat-api/internal/users"
)

func main() {
	// Init database
	database.InitDB()

	// Presence registry, websocket hub, and the relay between them
	registry := presence.NewRegistry()
	hub := realtime.NewHub()
	relay := realtime.NewRelay(registry, hub, users.NewRoleStore(database.GetDB()))

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(hub, relay)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8008"
	}
	log.Printf("Server starting on port :%s", port)
	log.Println("Endpoints:")
	log.Println("  POST /api/register")
	log.Println("  POST /api/login")
	log.Println("  GET  /api/users")
	log.Println("  GET  /api/presence/:userId")
	log.Println("  POST /api/presence/status")
	log.Println("  GET  /ws")
	log.Println("  GET  /health")

	if err := ginRoutes.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
