package ws

import "sync"

// Registry maps a user id to at most one live connection. It is the only
// structure mutated from multiple connection handlers concurrently, so all
// access goes through the mutex. It performs no I/O.
type Registry struct {
	mu    sync.RWMutex
	conns map[uint]Sender
}

// NewRegistry creates an empty connection registry
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint]Sender)}
}

// Register binds the user to the connection. A new registration silently
// replaces any prior one for the same user; last-registered wins.
func (r *Registry) Register(userID uint, sender Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = sender
}

// Lookup returns the user's live connection, if any
func (r *Registry) Lookup(userID uint) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sender, ok := r.conns[userID]
	return sender, ok
}

// Unregister removes the entry holding this connection. A no-op if the
// connection is not registered (double close) or was already replaced by a
// newer registration for the same user.
func (r *Registry) Unregister(sender Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID, s := range r.conns {
		if s == sender {
			delete(r.conns, userID)
			return
		}
	}
}

// Len reports how many users currently have a live connection
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
