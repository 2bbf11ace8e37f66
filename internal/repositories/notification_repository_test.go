package repositories

import (
	"testing"
	"time"

	"github.com/apetrov/socialhub/backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupNotificationDB(t *testing.T) (*gorm.DB, NotificationRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, NewPostgresNotificationRepository(db)
}

func TestNotificationRepository_CreateAndList(t *testing.T) {
	db, repo := setupNotificationDB(t)

	base := time.Now().Add(-time.Hour)
	rows := []models.Notification{
		{UserID: 1, ActorID: 2, Type: models.NotificationTypeFollow, CreatedAt: base},
		{UserID: 1, ActorID: 3, Type: models.NotificationTypeLike, EntityID: "abc123", CreatedAt: base.Add(time.Minute)},
		{UserID: 2, ActorID: 1, Type: models.NotificationTypeMessage, EntityID: "7", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	notifications, total, err := repo.GetByUserID(1, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d (total %d)", len(notifications), total)
	}
	// Newest first
	if notifications[0].Type != models.NotificationTypeLike {
		t.Fatalf("expected newest notification first, got %q", notifications[0].Type)
	}
}

func TestNotificationRepository_UnreadCountAndMarkRead(t *testing.T) {
	_, repo := setupNotificationDB(t)

	first := &models.Notification{UserID: 1, ActorID: 2, Type: models.NotificationTypeFollow}
	second := &models.Notification{UserID: 1, ActorID: 3, Type: models.NotificationTypeLike}
	if err := repo.CreateNotification(first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.CreateNotification(second); err != nil {
		t.Fatalf("create: %v", err)
	}

	count, err := repo.GetUnreadCount(1)
	if err != nil || count != 2 {
		t.Fatalf("expected 2 unread, got %d (err %v)", count, err)
	}

	if err := repo.MarkAsRead(first.ID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := repo.MarkAsRead(first.ID); err != nil {
		t.Fatalf("second mark should not error: %v", err)
	}
	if err := repo.MarkAsRead(42424); err != nil {
		t.Fatalf("unknown id should be a no-op: %v", err)
	}

	count, _ = repo.GetUnreadCount(1)
	if count != 1 {
		t.Fatalf("expected 1 unread after marking, got %d", count)
	}

	if err := repo.MarkAllAsRead(1); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	count, _ = repo.GetUnreadCount(1)
	if count != 0 {
		t.Fatalf("expected 0 unread after mark-all, got %d", count)
	}
}
