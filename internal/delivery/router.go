package delivery

import (
	"errors"
	"strconv"
	"strings"

	"github.com/apetrov/socialhub/backend/internal/models"
	"github.com/apetrov/socialhub/backend/internal/repositories"
	"github.com/apetrov/socialhub/backend/internal/ws"
	"github.com/apetrov/socialhub/backend/pkg/logger"
	"go.uber.org/zap"
)

// ErrInvalidMessage is returned when a send is malformed: missing ids,
// empty content, or a participant that does not resolve to a user.
var ErrInvalidMessage = errors.New("invalid message")

// Router drives the fan-out pipeline for chat messages and derived
// notifications: persist first, then push to whoever is online. A failed or
// skipped push never rolls back the persisted record; offline recipients
// pick the data up on their next REST fetch.
type Router struct {
	users         repositories.UserRepository
	messages      repositories.MessageRepository
	notifications repositories.NotificationRepository
	registry      *ws.Registry
}

// NewRouter creates a delivery router over the given stores and registry
func NewRouter(
	users repositories.UserRepository,
	messages repositories.MessageRepository,
	notifications repositories.NotificationRepository,
	registry *ws.Registry,
) *Router {
	return &Router{
		users:         users,
		messages:      messages,
		notifications: notifications,
		registry:      registry,
	}
}

// SendMessage validates and persists a chat message, acknowledges the
// sender, then pushes to the receiver when online and records the message
// notification. The ack goes out over the sender's own channel right after
// persistence, before any receiver push; the returned enriched message is
// the synchronous acknowledgment for the REST path.
func (r *Router) SendMessage(senderID, receiverID uint, content string) (*models.EnrichedMessage, error) {
	if senderID == 0 || receiverID == 0 || strings.TrimSpace(content) == "" {
		return nil, ErrInvalidMessage
	}
	sender, err := r.users.GetUserByID(senderID)
	if err != nil {
		return nil, ErrInvalidMessage
	}
	if _, err := r.users.GetUserByID(receiverID); err != nil {
		return nil, ErrInvalidMessage
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := r.messages.CreateMessage(message); err != nil {
		return nil, err
	}

	enriched := &models.EnrichedMessage{
		Message: *message,
		Sender:  sender.ToCompact(),
	}

	// The message is durable from here on. The sender's ack precedes the
	// receiver push; push failures only delay the message until the
	// receiver's next fetch.
	if ackTo, online := r.registry.Lookup(senderID); online {
		if err := ackTo.Send(ws.Event{Type: ws.EventMessageSent, Message: enriched}); err != nil {
			logger.Warn("ack message failed",
				zap.Uint("senderId", senderID),
				zap.Uint("messageId", message.ID),
				zap.Error(err))
		}
	}

	if receiver, online := r.registry.Lookup(receiverID); online {
		if err := receiver.Send(ws.Event{Type: ws.EventMessageReceived, Message: enriched}); err != nil {
			logger.Warn("push message failed",
				zap.Uint("receiverId", receiverID),
				zap.Uint("messageId", message.ID),
				zap.Error(err))
		}
	}

	r.Notify(receiverID, senderID, models.NotificationTypeMessage, strconv.FormatUint(uint64(message.ID), 10))

	return enriched, nil
}

// NotifyLike records and pushes a like notification to the post owner.
// Self-likes produce no notification.
func (r *Router) NotifyLike(actorID, ownerID uint, postID string) {
	if actorID == ownerID {
		return
	}
	r.Notify(ownerID, actorID, models.NotificationTypeLike, postID)
}

// NotifyFollow records and pushes a follow notification
func (r *Router) NotifyFollow(actorID, targetID uint) {
	r.Notify(targetID, actorID, models.NotificationTypeFollow, "")
}

// Notify persists a notification and pushes it to the recipient when
// online. Failures are logged, never surfaced: a missed real-time
// notification degrades to polling, it does not fail the triggering action.
func (r *Router) Notify(userID, actorID uint, notificationType, entityID string) {
	notification := &models.Notification{
		UserID:   userID,
		ActorID:  actorID,
		Type:     notificationType,
		EntityID: entityID,
	}
	if err := r.notifications.CreateNotification(notification); err != nil {
		logger.Error("create notification failed",
			zap.Uint("userId", userID),
			zap.String("type", notificationType),
			zap.Error(err))
		return
	}

	recipient, online := r.registry.Lookup(userID)
	if !online {
		return
	}

	actor, err := r.users.GetUserByID(actorID)
	if err != nil {
		logger.Warn("notification actor lookup failed", zap.Uint("actorId", actorID), zap.Error(err))
		return
	}
	enriched := &models.EnrichedNotification{
		Notification: *notification,
		Actor:        actor.ToCompact(),
	}
	if err := recipient.Send(ws.Event{Type: ws.EventNotification, Notification: enriched}); err != nil {
		logger.Warn("push notification failed",
			zap.Uint("userId", userID),
			zap.Uint("notificationId", notification.ID),
			zap.Error(err))
	}
}
