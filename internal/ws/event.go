package ws

import "github.com/apetrov/socialhub/backend/internal/models"

// Server → client event types
const (
	EventMessageSent     = "message_sent"
	EventMessageReceived = "message_received"
	EventNotification    = "notification"
)

// Event is the server → client push envelope
type Event struct {
	Type         string                       `json:"type"`
	Message      *models.EnrichedMessage      `json:"message,omitempty"`
	Notification *models.EnrichedNotification `json:"notification,omitempty"`
}

// Inbound is the client → server frame. A frame carrying only a userId
// registers the connection; type "message" sends a chat message.
type Inbound struct {
	Type       string `json:"type,omitempty"`
	UserID     uint   `json:"userId,omitempty"`
	ReceiverID uint   `json:"receiverId,omitempty"`
	Content    string `json:"content,omitempty"`
}
