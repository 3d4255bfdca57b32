package realtime

import (
	"encoding/json"
	"time"

	"marketplace-chat-api/internal/presence"
)

// Inbound event names (client -> gateway).
const (
	EventUserOnline     = "userOnline"
	EventGetOnlineUsers = "getOnlineUsers"
	EventJoinRoom       = "joinRoom"
	EventLeaveRoom      = "leaveRoom"
	EventSendMessage    = "sendMessage"
	EventTyping         = "typing"
	EventMessagesRead   = "messagesRead"
)

// Outbound event names (gateway -> client).
const (
	EventOnlineUsersStatus      = "onlineUsersStatus"
	EventUserJoinedRoom         = "userJoinedRoom"
	EventReceiveMessage         = "receiveMessage"
	EventNewMessageNotification = "newMessageNotification"
	EventUserTyping             = "userTyping"
	EventMessagesMarkedRead     = "messagesMarkedRead"
	EventUserStatusChange       = "userStatusChange"
)

// Envelope frames every message on the wire: an event name plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// UserOnlinePayload announces the client's identity on an open connection.
type UserOnlinePayload struct {
	UserID string `json:"userId"`
}

// GetOnlineUsersPayload asks which of the given users are online.
type GetOnlineUsersPayload struct {
	UserIDs []string `json:"userIds"`
}

// OnlineUsersStatusPayload is the direct reply to getOnlineUsers.
type OnlineUsersStatusPayload map[string]presence.Status

// RoomPayload carries the conversation for joinRoom/leaveRoom.
type RoomPayload struct {
	ConversationID string `json:"conversationId"`
}

// UserJoinedRoomPayload notifies existing room members of a new peer.
type UserJoinedRoomPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	ConnectionID   string `json:"connectionId"`
}

// ChatMessage is the client-supplied message body. Only the text field is
// interpreted by the gateway; anything else is passed through untouched.
type ChatMessage struct {
	Text string `json:"text"`
}

// SendMessagePayload is an inbound chat message scoped to one conversation.
type SendMessagePayload struct {
	ConversationID string      `json:"conversationId"`
	Message        ChatMessage `json:"message"`
	SenderID       string      `json:"senderId"`
	ReceiverID     string      `json:"receiverId"`
}

// ReceiveMessagePayload is fanned out to every member of the conversation,
// sender included, with a server-assigned timestamp.
type ReceiveMessagePayload struct {
	Text           string    `json:"text"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	ConversationID string    `json:"conversationId"`
	Timestamp      time.Time `json:"timestamp"`
}

// NotificationPreview is a bounded prefix of a message, safe to show on
// surfaces not focused on the conversation (e.g. a notification bell).
type NotificationPreview struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessageNotificationPayload is unicast to the receiver only, if online.
type NewMessageNotificationPayload struct {
	ConversationID string              `json:"conversationId"`
	SenderID       string              `json:"senderId"`
	Message        NotificationPreview `json:"message"`
}

// TypingPayload is the ephemeral typing indicator, both directions.
type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	IsTyping       bool   `json:"isTyping"`
}

// MessagesReadPayload reports messages a user has read in a conversation.
type MessagesReadPayload struct {
	ConversationID string   `json:"conversationId"`
	UserID         string   `json:"userId"`
	MessageIDs     []string `json:"messageIds"`
}

// MessagesMarkedReadPayload is the read receipt relayed to other members.
type MessagesMarkedReadPayload struct {
	ConversationID string    `json:"conversationId"`
	UserID         string    `json:"userId"`
	MessageIDs     []string  `json:"messageIds"`
	ReadAt         time.Time `json:"readAt"`
}

// UserStatusChangePayload is broadcast to everyone on presence transitions.
type UserStatusChangePayload struct {
	UserID   string    `json:"userId"`
	Status   string    `json:"status"` // "online" or "offline"
	LastSeen time.Time `json:"lastSeen"`
}
