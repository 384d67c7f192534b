package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

// MessageType names a frame sent to websocket clients.
type MessageType string

const (
	TypeConnected    MessageType = "connected"
	TypePong         MessageType = "pong"
	TypeSubscribed   MessageType = "subscribed"
	TypeNotification MessageType = "notification"
)

// Message is the server-pushed frame. Notification carries the event payload
// for TypeNotification frames.
type Message struct {
	Type         MessageType `json:"type"`
	Message      string      `json:"message,omitempty"`
	Notification interface{} `json:"notification,omitempty"`
	User         *UserInfo   `json:"user,omitempty"`
	Channels     []string    `json:"channels,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

type UserInfo struct {
	ID   uuid.UUID    `json:"id"`
	Name string       `json:"name"`
	Role authctx.Role `json:"role"`
}

// inbound is what clients may send.
type inbound struct {
	Type     string   `json:"type"`
	Token    string   `json:"token,omitempty"`
	Channels []string `json:"channels,omitempty"`
}

// NewNotification wraps a payload for delivery.
func NewNotification(payload interface{}) Message {
	return Message{Type: TypeNotification, Notification: payload, Timestamp: time.Now().UTC()}
}
