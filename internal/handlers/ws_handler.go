package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"marketplace-chat-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsClient implements realtime.Client by wrapping a websocket connection.
// The mutex serializes writes: the relay fans out from other connections'
// read loops, and gorilla conns allow only one concurrent writer.
type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) Send(message []byte) bool {
	if c == nil || c.conn == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		return false
	}
	return true
}

func (c *wsClient) Close() {
	if c != nil && c.conn != nil {
		_ = c.conn.Close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is already handled at Gin level; allow upgrade from any origin here
		return true
	},
}

// WebSocketHandler upgrades the connection, registers it with the hub, and
// pumps inbound events into the relay until the client goes away.
// It requires JWT middleware to have set "user_id" in context.
func WebSocketHandler(hub *realtime.Hub, relay *realtime.Relay) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
			return
		}

		// Upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("websocket upgrade error:", err)
			return
		}

		connID := uuid.New().String()
		client := &wsClient{conn: conn}
		hub.Register(connID, client)

		// Heartbeat: send periodic pings; close on error
		pingTicker := time.NewTicker(30 * time.Second)
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				case <-pingTicker.C:
					if !client.ping() {
						// ping failed; reader loop will exit on next error
						return
					}
				}
			}
		}()
		defer func() {
			close(done)
			pingTicker.Stop()
			hub.Unregister(connID)
			relay.HandleDisconnect(connID)
			client.Close()
		}()

		// Reader loop: decode event envelopes and hand them to the relay.
		conn.SetReadLimit(64 << 10)
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				// Normal close or error; exit loop
				return
			}
			var env realtime.Envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				// Unparseable frames are dropped; best-effort semantics
				continue
			}
			dispatch(relay, connID, env)
		}
	}
}

func (c *wsClient) ping() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)) == nil
}

// dispatch routes one inbound envelope to its relay handler. Payloads that
// fail to decode are ignored; unknown events likewise.
func dispatch(relay *realtime.Relay, connID string, env realtime.Envelope) {
	switch env.Event {
	case realtime.EventUserOnline:
		var p realtime.UserOnlinePayload
		if json.Unmarshal(env.Data, &p) == nil {
			relay.HandleUserOnline(connID, p)
		}
	case realtime.EventGetOnlineUsers:
		var p realtime.GetOnlineUsersPayload
		if json.Unmarshal(env.Data, &p) == nil {
			relay.HandleGetOnlineUsers(connID, p)
		}
	case realtime.EventJoinRoom:
		var p realtime.RoomPayload
		if json.Unmarshal(env.Data, &p) == nil {
			relay.HandleJoinRoom(connID, p)
		}
	case realtime.EventLeaveRoom:
		var p realtime.RoomPayload
		if json.Unmarshal(env.Data, &p) == nil {
			relay.HandleLeaveRoom(connID, p)
		}
	case realtime.EventSendMessage:
		var p realtime.SendMessagePayload
		if json.Unmarshal(env.Data, &p) == nil {
			relay.HandleSendMessage(connID, p)
		}
	case realtime.EventTyping:
		var p realtime.TypingPayload
		if json.Unmarshal(env.Data, &p) == nil {
			relay.HandleTyping(connID, p)
		}
	case realtime.EventMessagesRead:
		var p realtime.MessagesReadPayload
		if json.Unmarshal(env.Data, &p) == nil {
			relay.HandleMessagesRead(connID, p)
		}
	}
}
