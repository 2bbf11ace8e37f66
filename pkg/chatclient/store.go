package chatclient

import (
	"sort"
	"sync"

	"github.com/apetrov/socialhub/backend/internal/models"
)

// ConversationStore keeps the client-side view of one conversation: an
// ordered, deduplicated sequence of messages merged from REST fetches and
// live pushes. Push delivery may race a concurrent fetch and hand us the
// same message twice; the id check makes that harmless.
type ConversationStore struct {
	mu       sync.Mutex
	messages []models.EnrichedMessage
	seen     map[uint]struct{}
}

// NewConversationStore creates an empty store
func NewConversationStore() *ConversationStore {
	return &ConversationStore{seen: make(map[uint]struct{})}
}

// Seed merges a fetched history into the store. It does not clear what is
// already there, so a push that landed before the fetch returned survives.
func (s *ConversationStore) Seed(messages []models.EnrichedMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range messages {
		s.insertLocked(messages[i])
	}
}

// Merge inserts one pushed message, preserving ascending createdAt order.
// Returns false if the id was already present.
func (s *ConversationStore) Merge(message models.EnrichedMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(message)
}

func (s *ConversationStore) insertLocked(message models.EnrichedMessage) bool {
	if _, ok := s.seen[message.ID]; ok {
		return false
	}
	s.seen[message.ID] = struct{}{}

	// Most inserts land at the tail; sort.Search finds the slot when a
	// fetch backfills something older than the newest push.
	i := sort.Search(len(s.messages), func(i int) bool {
		if s.messages[i].CreatedAt.Equal(message.CreatedAt) {
			return s.messages[i].ID > message.ID
		}
		return s.messages[i].CreatedAt.After(message.CreatedAt)
	})
	s.messages = append(s.messages, models.EnrichedMessage{})
	copy(s.messages[i+1:], s.messages[i:])
	s.messages[i] = message
	return true
}

// Messages returns a copy of the current ordered view
func (s *ConversationStore) Messages() []models.EnrichedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.EnrichedMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of distinct messages held
func (s *ConversationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
