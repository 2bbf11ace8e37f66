package repositories

import (
	"github.com/apetrov/socialhub/backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	CreateMessage(message *models.Message) error
	GetMessagesForPair(userA, userB uint) ([]models.Message, error)
	GetConversations(userID uint) ([]models.ConversationPreview, error)
	MarkAsRead(messageID uint) error
	MarkConversationAsRead(userID, otherUserID uint) error
	GetUnreadCount(userID uint) (int64, error)
}

type postgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a new MessageRepository backed by PostgreSQL
func NewPostgresMessageRepository(db *gorm.DB) MessageRepository {
	return &postgresMessageRepository{db: db}
}

func (r *postgresMessageRepository) CreateMessage(message *models.Message) error {
	return r.db.Create(message).Error
}

// GetMessagesForPair returns every message exchanged between the two users,
// ascending by creation time with ids breaking ties.
func (r *postgresMessageRepository) GetMessagesForPair(userA, userB uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// GetConversations returns one preview per counterpart the user has ever
// exchanged messages with, most recent conversation first.
func (r *postgresMessageRepository) GetConversations(userID uint) ([]models.ConversationPreview, error) {
	var messages []models.Message
	err := r.db.
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	previews := make([]models.ConversationPreview, 0)
	index := make(map[uint]int)     // counterpart id -> position in previews
	userCache := make(map[uint]models.UserCompact)

	lookup := func(id uint) models.UserCompact {
		if compact, ok := userCache[id]; ok {
			return compact
		}
		var user models.User
		if err := r.db.First(&user, id).Error; err != nil {
			return models.UserCompact{ID: id}
		}
		compact := user.ToCompact()
		userCache[id] = compact
		return compact
	}

	for _, m := range messages {
		other := m.SenderID
		if other == userID {
			other = m.ReceiverID
		}
		pos, ok := index[other]
		if !ok {
			// Messages are sorted newest first, so the first one seen for a
			// counterpart is the conversation's last message.
			previews = append(previews, models.ConversationPreview{
				User: lookup(other),
				LastMessage: models.EnrichedMessage{
					Message: m,
					Sender:  lookup(m.SenderID),
				},
			})
			pos = len(previews) - 1
			index[other] = pos
		}
		if m.ReceiverID == userID && !m.Read {
			previews[pos].UnreadCount++
		}
	}

	return previews, nil
}

// MarkAsRead flips the read flag. Unknown or already-read ids are a no-op
// so read-receipt races stay harmless.
func (r *postgresMessageRepository) MarkAsRead(messageID uint) error {
	return r.db.Model(&models.Message{}).Where("id = ?", messageID).Update("read", true).Error
}

// MarkConversationAsRead marks every unread message the user received from
// the given counterpart as read.
func (r *postgresMessageRepository) MarkConversationAsRead(userID, otherUserID uint) error {
	return r.db.Model(&models.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND read = ?", userID, otherUserID, false).
		Update("read", true).Error
}

func (r *postgresMessageRepository) GetUnreadCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Message{}).
		Where("receiver_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}
