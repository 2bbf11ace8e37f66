package models

import "time"

// Notification types, one per triggering action
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeFollow  = "follow"
	NotificationTypeMessage = "message"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"index"`  // recipient
	ActorID   uint      `json:"actorId" gorm:"index"` // who triggered it
	Type      string    `json:"type" gorm:"size:30;index"`
	EntityID  string    `json:"entityId,omitempty"` // triggering post/message reference
	Read      bool      `json:"read" gorm:"default:false;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

// EnrichedNotification includes the actor's public profile
type EnrichedNotification struct {
	Notification
	Actor UserCompact `json:"actor"`
}

// UnreadCounts reports unread notifications and unread messages,
// computed independently.
type UnreadCounts struct {
	Notifications int64 `json:"notifications"`
	Messages      int64 `json:"messages"`
}
