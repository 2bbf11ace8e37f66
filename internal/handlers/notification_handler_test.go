package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/apetrov/socialhub/backend/internal/models"
)

func TestNotificationHandler_UnreadCounts(t *testing.T) {
	d := setupHandlerDeps(t)
	h := NewNotificationHandler(d.notificationRepo, d.messageRepo, d.userRepo)

	// Two notifications and one unread message for bob
	d.deliveryRouter.NotifyFollow(1, 2)
	d.deliveryRouter.NotifyLike(1, 2, "abc123")
	if _, err := d.deliveryRouter.SendMessage(1, 2, "hi"); err != nil {
		t.Fatalf("send: %v", err)
	}

	c, rec := newAuthedContext(t, http.MethodGet, "", 2)
	if err := h.GetUnreadCount(c); err != nil {
		t.Fatalf("unread count: %v", err)
	}

	var out struct {
		Data models.UnreadCounts `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// The message send also creates a message notification
	if out.Data.Notifications != 3 {
		t.Fatalf("expected 3 unread notifications, got %d", out.Data.Notifications)
	}
	if out.Data.Messages != 1 {
		t.Fatalf("expected 1 unread message, got %d", out.Data.Messages)
	}
}

func TestNotificationHandler_ListAndMarkAll(t *testing.T) {
	d := setupHandlerDeps(t)
	h := NewNotificationHandler(d.notificationRepo, d.messageRepo, d.userRepo)

	d.deliveryRouter.NotifyFollow(1, 2)
	d.deliveryRouter.NotifyLike(1, 2, "abc123")

	c, rec := newAuthedContext(t, http.MethodGet, "", 2)
	if err := h.GetNotifications(c); err != nil {
		t.Fatalf("list: %v", err)
	}

	var out struct {
		Data struct {
			Notifications []models.EnrichedNotification `json:"notifications"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Data.Notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(out.Data.Notifications))
	}
	// Newest first, actor enriched
	if out.Data.Notifications[0].Type != models.NotificationTypeLike {
		t.Fatalf("expected newest first, got %q", out.Data.Notifications[0].Type)
	}
	if out.Data.Notifications[0].Actor.Username != "alice" {
		t.Fatalf("expected enriched actor, got %+v", out.Data.Notifications[0].Actor)
	}

	c, _ = newAuthedContext(t, http.MethodPost, "", 2)
	if err := h.MarkAllAsRead(c); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	count, _ := d.notificationRepo.GetUnreadCount(2)
	if count != 0 {
		t.Fatalf("expected 0 unread after mark-all, got %d", count)
	}
}
