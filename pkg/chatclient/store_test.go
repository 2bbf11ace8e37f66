package chatclient

import (
	"testing"
	"time"

	"github.com/apetrov/socialhub/backend/internal/models"
)

func mkMessage(id uint, createdAt time.Time, content string) models.EnrichedMessage {
	return models.EnrichedMessage{
		Message: models.Message{
			ID:         id,
			SenderID:   1,
			ReceiverID: 2,
			Content:    content,
			CreatedAt:  createdAt,
		},
		Sender: models.UserCompact{ID: 1, Username: "alice"},
	}
}

func TestConversationStore_DuplicateIDMergesOnce(t *testing.T) {
	s := NewConversationStore()
	base := time.Now()

	msg := mkMessage(7, base, "hello")
	if !s.Merge(msg) {
		t.Fatalf("first merge should insert")
	}
	// Same message arrives again via REST refetch
	s.Seed([]models.EnrichedMessage{msg})
	if s.Merge(msg) {
		t.Fatalf("second merge should be a no-op")
	}

	if s.Len() != 1 {
		t.Fatalf("expected exactly one entry, got %d", s.Len())
	}
}

func TestConversationStore_MaintainsAscendingOrder(t *testing.T) {
	s := NewConversationStore()
	base := time.Now().Add(-time.Hour)

	// A push lands before the history fetch returns
	s.Merge(mkMessage(5, base.Add(4*time.Minute), "newest"))
	s.Seed([]models.EnrichedMessage{
		mkMessage(1, base, "oldest"),
		mkMessage(3, base.Add(2*time.Minute), "middle"),
		mkMessage(5, base.Add(4*time.Minute), "newest"), // already merged from the push
	})
	s.Merge(mkMessage(4, base.Add(3*time.Minute), "late arrival"))

	got := s.Messages()
	want := []string{"oldest", "middle", "late arrival", "newest"}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].Content != w {
			t.Fatalf("position %d: expected %q, got %q", i, w, got[i].Content)
		}
	}
}

func TestConversationStore_TiesBrokenByID(t *testing.T) {
	s := NewConversationStore()
	at := time.Now()

	s.Merge(mkMessage(9, at, "second"))
	s.Merge(mkMessage(8, at, "first"))

	got := s.Messages()
	if got[0].ID != 8 || got[1].ID != 9 {
		t.Fatalf("expected id order on equal timestamps, got %d then %d", got[0].ID, got[1].ID)
	}
}

func TestConversationStore_MessagesReturnsCopy(t *testing.T) {
	s := NewConversationStore()
	s.Merge(mkMessage(1, time.Now(), "hello"))

	view := s.Messages()
	view[0].Content = "mutated"

	if s.Messages()[0].Content != "hello" {
		t.Fatalf("store content changed through the returned slice")
	}
}
