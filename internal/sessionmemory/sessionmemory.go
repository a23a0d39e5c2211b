// Package sessionmemory implements the session FIFO tier (C4, spec
// §4.4): a bounded, oldest-eviction queue of messages per session.
package sessionmemory

import (
	"time"

	"github.com/X-Luffy/Law-Agent/pkg/models"
)

// DefaultCapacity is session_memory_size's default (spec §3).
const DefaultCapacity = 50

// Store holds one bounded FIFO per session ID. It is not thread-safe by
// contract (spec §4.4): callers must serialize access per session ID
// themselves. Flow takes no per-session lock, so it does not do this
// on their behalf.
type Store struct {
	capacity int
	sessions map[string][]models.Message
}

// New builds a Store with the given per-session capacity. capacity<=0
// uses DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{capacity: capacity, sessions: make(map[string][]models.Message)}
}

// Add appends a message to sessionID's FIFO, evicting the oldest
// message first if the FIFO is at capacity.
func (s *Store) Add(sessionID string, role models.Role, content string, metadata map[string]any) {
	msg := models.Message{
		Role:      role,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
	queue := s.sessions[sessionID]
	queue = append(queue, msg)
	if len(queue) > s.capacity {
		excess := len(queue) - s.capacity
		queue = queue[excess:]
	}
	s.sessions[sessionID] = queue
}

// Recent returns the last n messages for sessionID in insertion order.
// n<=0 or unset returns the full window.
func (s *Store) Recent(sessionID string, n int) []models.Message {
	queue := s.sessions[sessionID]
	if n <= 0 || n >= len(queue) {
		return append([]models.Message(nil), queue...)
	}
	return append([]models.Message(nil), queue[len(queue)-n:]...)
}

// All returns the full window for sessionID in insertion order.
func (s *Store) All(sessionID string) []models.Message {
	return append([]models.Message(nil), s.sessions[sessionID]...)
}

// Len reports how many messages sessionID currently holds.
func (s *Store) Len(sessionID string) int {
	return len(s.sessions[sessionID])
}

// Reset clears sessionID's window entirely.
func (s *Store) Reset(sessionID string) {
	delete(s.sessions, sessionID)
}
