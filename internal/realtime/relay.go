package realtime

import (
	"log"
	"time"

	"marketplace-chat-api/internal/models"
	"marketplace-chat-api/internal/presence"
)

// OperationsRoom receives back-office broadcasts; admins join it on announce.
// Each user also gets a personal room (see personalRoom) so higher layers can
// address "this user" without tracking connection IDs.
const OperationsRoom = "operations"

// notificationPreviewLimit bounds how much of a message body may leak onto
// surfaces not focused on the conversation.
const notificationPreviewLimit = 100

func personalRoom(userID string) string {
	return "user:" + userID
}

// RoleLookup resolves a user's marketplace role. Consulted once per announce;
// failures are logged and never fatal to the connection.
type RoleLookup interface {
	FindUserRole(userID string) (models.Role, error)
}

// Relay routes inbound connection events: it updates the presence registry
// and fans the right outbound events out to the right recipients. Every
// handler is built from the three delivery shapes the Transport provides —
// global broadcast for presence changes, room broadcast for conversation
// traffic, unicast for direct notifications. Handlers never return an error
// across the connection boundary; bad input is a silent no-op.
type Relay struct {
	registry *presence.Registry
	tr       Transport
	roles    RoleLookup

	// now stamps message timestamps server-side, independent of client clocks.
	now func() time.Time
}

// NewRelay wires a relay to its registry, transport, and role collaborator.
func NewRelay(registry *presence.Registry, tr Transport, roles RoleLookup) *Relay {
	return &Relay{
		registry: registry,
		tr:       tr,
		roles:    roles,
		now:      time.Now,
	}
}

// Registry exposes the read side of presence to REST handlers.
func (r *Relay) Registry() *presence.Registry {
	return r.registry
}

// HandleUserOnline processes an identity announcement: the user goes into
// the registry, the connection joins the user's personal room, admins
// additionally join the operations room, and everyone is told the user
// came online. A failed role lookup skips only the operations join.
func (r *Relay) HandleUserOnline(connID string, p UserOnlinePayload) {
	if p.UserID == "" {
		return
	}

	lastSeen := r.registry.MarkOnline(p.UserID, connID)
	r.tr.Join(connID, personalRoom(p.UserID))

	role, err := r.roles.FindUserRole(p.UserID)
	if err != nil {
		log.Printf("realtime: role lookup for %s failed: %v", p.UserID, err)
	} else if role == models.RoleAdmin {
		r.tr.Join(connID, OperationsRoom)
	}

	r.tr.BroadcastGlobal(EventUserStatusChange, UserStatusChangePayload{
		UserID:   p.UserID,
		Status:   "online",
		LastSeen: lastSeen,
	})
}

// HandleGetOnlineUsers answers a presence query directly to the asker.
func (r *Relay) HandleGetOnlineUsers(connID string, p GetOnlineUsersPayload) {
	if len(p.UserIDs) == 0 {
		return
	}
	statuses := r.registry.BulkStatus(p.UserIDs)
	r.tr.Unicast(connID, EventOnlineUsersStatus, OnlineUsersStatusPayload(statuses))
}

// HandleJoinRoom joins a conversation room and tells the other members.
// A repeat join is idempotent and emits no duplicate notice.
func (r *Relay) HandleJoinRoom(connID string, p RoomPayload) {
	if p.ConversationID == "" {
		return
	}
	if !r.tr.Join(connID, p.ConversationID) {
		return
	}
	userID, _ := r.registry.UserOf(connID)
	r.tr.BroadcastToRoom(p.ConversationID, connID, EventUserJoinedRoom, UserJoinedRoomPayload{
		ConversationID: p.ConversationID,
		UserID:         userID,
		ConnectionID:   connID,
	})
}

// HandleLeaveRoom leaves a conversation room. Idempotent.
func (r *Relay) HandleLeaveRoom(connID string, p RoomPayload) {
	if p.ConversationID == "" {
		return
	}
	r.tr.Leave(connID, p.ConversationID)
}

// HandleSendMessage stamps a server-side timestamp, broadcasts the message
// to the whole room (sender included, so every open view of the
// conversation updates), and — if the receiver is online — unicasts a
// truncated notification for surfaces not focused on the room. An offline
// receiver is the common case, not an error: the unicast is just skipped.
func (r *Relay) HandleSendMessage(connID string, p SendMessagePayload) {
	if p.ConversationID == "" || p.SenderID == "" {
		return
	}

	ts := r.now()
	r.tr.BroadcastToRoom(p.ConversationID, "", EventReceiveMessage, ReceiveMessagePayload{
		Text:           p.Message.Text,
		SenderID:       p.SenderID,
		ReceiverID:     p.ReceiverID,
		ConversationID: p.ConversationID,
		Timestamp:      ts,
	})

	if receiverConn, ok := r.registry.Locate(p.ReceiverID); ok {
		r.tr.Unicast(receiverConn, EventNewMessageNotification, NewMessageNotificationPayload{
			ConversationID: p.ConversationID,
			SenderID:       p.SenderID,
			Message: NotificationPreview{
				Text:      truncate(p.Message.Text, notificationPreviewLimit),
				Timestamp: ts,
			},
		})
	}
}

// HandleTyping relays a typing indicator to the other room members.
// Ephemeral: never stored, never acknowledged.
func (r *Relay) HandleTyping(connID string, p TypingPayload) {
	if p.ConversationID == "" || p.UserID == "" {
		return
	}
	r.tr.BroadcastToRoom(p.ConversationID, connID, EventUserTyping, TypingPayload{
		UserID:         p.UserID,
		IsTyping:       p.IsTyping,
		ConversationID: p.ConversationID,
	})
}

// HandleMessagesRead relays a read receipt to the other room members with a
// server-stamped readAt. Persisting read state is a collaborator's job.
func (r *Relay) HandleMessagesRead(connID string, p MessagesReadPayload) {
	if p.ConversationID == "" || p.UserID == "" || len(p.MessageIDs) == 0 {
		return
	}
	r.tr.BroadcastToRoom(p.ConversationID, connID, EventMessagesMarkedRead, MessagesMarkedReadPayload{
		ConversationID: p.ConversationID,
		UserID:         p.UserID,
		MessageIDs:     p.MessageIDs,
		ReadAt:         r.now(),
	})
}

// HandleDisconnect marks the connection's user offline and broadcasts the
// transition — but only if the registry actually held an entry for this
// connection. An anonymous connection, or a stale disconnect racing a
// re-announcement, produces no event.
func (r *Relay) HandleDisconnect(connID string) {
	userID, lastSeen, removed := r.registry.MarkOffline(connID)
	if removed {
		r.tr.BroadcastGlobal(EventUserStatusChange, UserStatusChangePayload{
			UserID:   userID,
			Status:   "offline",
			LastSeen: lastSeen,
		})
	}
}

// truncate bounds s to at most limit characters (runes, not bytes).
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
