package models

import "time"

// Message represents a direct message between two users (PostgreSQL).
// Immutable after creation except for the read flag.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   uint      `json:"senderId" gorm:"index:idx_messages_sender"`
	ReceiverID uint      `json:"receiverId" gorm:"index:idx_messages_receiver"`
	Content    string    `json:"content"`
	Read       bool      `json:"read" gorm:"default:false;index"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

// EnrichedMessage includes the sender's public profile
type EnrichedMessage struct {
	Message
	Sender UserCompact `json:"sender"`
}

// ConversationPreview summarizes one conversation for the inbox list.
// Derived on each request, never stored.
type ConversationPreview struct {
	User        UserCompact     `json:"user"`
	LastMessage EnrichedMessage `json:"lastMessage"`
	UnreadCount int64           `json:"unreadCount"`
}

// SendMessageRequest defines the request body for sending a message over REST
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,min=1"`
}
