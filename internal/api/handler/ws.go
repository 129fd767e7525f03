package handler

import (
	"log"
	"net/http"
	"strings"

	"wegochat/backend/internal/chathub"
	"wegochat/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten for production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket authenticates the caller and upgrades the connection,
// registering it with the hub. Browsers cannot set headers on websocket
// requests, so the token is also accepted as a query parameter.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			tokenString = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
		return
	}

	userID, err := h.parseToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		UserID:   userID,
		Conn:     conn,
		Hub:      h.Hub,
		Messages: h.Messages,
		Send:     make(chan models.Event, 256),
	}

	h.Hub.Register(client)
	client.Run()
}

// NotifyPresence tells the user's friends about an online status change.
// Wired as the hub's OnPresenceChange callback, so it runs after the
// presence write has landed: first device online, last device offline. A
// reconnect racing the disconnect shows up in the re-check and suppresses
// the stale offline announcement.
func (h *Handler) NotifyPresence(userID string, online bool) {
	if !online {
		still, err := h.Storage.IsUserOnline(userID)
		if err != nil {
			log.Printf("WARNING: Failed to check presence of %s: %v", userID, err)
			return
		}
		if still {
			return
		}
	}

	user, err := h.Storage.GetUserByID(userID)
	if err != nil {
		log.Printf("WARNING: Failed to load user %s for presence broadcast: %v", userID, err)
		return
	}
	ev := models.Event{
		Event: models.EventOnlineStatus,
		Data:  map[string]interface{}{"user_id": userID, "online": online},
	}
	for _, friendID := range user.Friends {
		h.Hub.NotifyUser(friendID, ev)
	}
}
