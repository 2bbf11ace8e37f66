package handlers

import (
	"net/http"
	"strconv"

	"github.com/apetrov/socialhub/backend/internal/delivery"
	"github.com/apetrov/socialhub/backend/internal/models"
	"github.com/apetrov/socialhub/backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// MessageHandler handles message-related HTTP requests. Sends go through
// the same delivery pipeline as the websocket path, so REST doubles as the
// guaranteed-delivery fallback.
type MessageHandler struct {
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
	deliveryRouter    *delivery.Router
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, deliveryRouter *delivery.Router) *MessageHandler {
	return &MessageHandler{
		messageRepository: messageRepo,
		userRepository:    userRepo,
		deliveryRouter:    deliveryRouter,
	}
}

// RegisterMessageRoutes registers message routes
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("/conversations", h.GetConversations)
	g.GET("/messages/:id", h.GetMessages)
	g.POST("/messages/:id", h.SendMessage)
	g.POST("/messages/:id/read", h.MarkAsRead)
}

// enrichMessages attaches the sender's public profile to each message
func (h *MessageHandler) enrichMessages(messages []models.Message) []models.EnrichedMessage {
	enriched := make([]models.EnrichedMessage, len(messages))
	userCache := make(map[uint]models.UserCompact)

	for i, m := range messages {
		enriched[i] = models.EnrichedMessage{Message: m}
		if sender, ok := userCache[m.SenderID]; ok {
			enriched[i].Sender = sender
		} else {
			user, err := h.userRepository.GetUserByID(m.SenderID)
			if err == nil {
				compact := user.ToCompact()
				userCache[m.SenderID] = compact
				enriched[i].Sender = compact
			}
		}
	}
	return enriched
}

// GetConversations returns the user's conversation previews, most recent first
func (h *MessageHandler) GetConversations(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	conversations, err := h.messageRepository.GetConversations(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"conversations": conversations},
	})
}

// GetMessages returns the conversation with the given user in ascending
// creation order. Side effect: every returned message addressed to the
// caller is marked read, so the fetch acts as the read receipt.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	otherUserID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	messages, err := h.messageRepository.GetMessagesForPair(currentUserID, uint(otherUserID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.messageRepository.MarkConversationAsRead(currentUserID, uint(otherUserID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"messages": h.enrichMessages(messages)},
	})
}

// SendMessage creates a message addressed to the user in the path and runs
// the delivery pipeline (persist, push to receiver if online, notify).
func (h *MessageHandler) SendMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	receiverID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	message, err := h.deliveryRouter.SendMessage(currentUserID, uint(receiverID), req.Content)
	if err != nil {
		if err == delivery.ErrInvalidMessage {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid message data")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"data":    echo.Map{"message": message},
	})
}

// MarkAsRead marks a single message as read. Idempotent; unknown ids are
// ignored so racing read receipts stay harmless.
func (h *MessageHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	messageID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid message ID")
	}

	if err := h.messageRepository.MarkAsRead(uint(messageID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"read": true}})
}
