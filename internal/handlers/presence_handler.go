package handlers

import (
	"net/http"

	"marketplace-chat-api/internal/presence"

	"github.com/gin-gonic/gin"
)

// PresenceResponse answers "is this user online" over REST.
type PresenceResponse struct {
	UserID       string `json:"userId"`
	IsOnline     bool   `json:"isOnline"`
	ConnectionID string `json:"connectionId,omitempty"`
}

// BulkPresenceRequest asks for the status of several users at once.
type BulkPresenceRequest struct {
	UserIDs []string `json:"userIds" binding:"required"`
}

// GetPresence exposes the registry's read side to REST collaborators
// GET /api/presence/:userId
func GetPresence(registry *presence.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		connID, online := registry.Locate(userID)
		c.JSON(http.StatusOK, PresenceResponse{
			UserID:       userID,
			IsOnline:     online,
			ConnectionID: connID,
		})
	}
}

// BulkPresence answers a contact-list presence query in one round trip
// POST /api/presence/status
func BulkPresence(registry *presence.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BulkPresenceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userIds is required"})
			return
		}
		c.JSON(http.StatusOK, registry.BulkStatus(req.UserIDs))
	}
}
