// Package session issues and resolves the opaque bearer tokens used by
// the HTTP API.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session binds an opaque token to a user until it expires.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}

// Store manages session lifetimes. It is injected into the HTTP layer
// rather than held as ambient process state.
type Store interface {
	Create(userID string) Session
	Lookup(token string) (string, bool)
	Invalidate(token string)
}

// MemoryStore keeps sessions in process memory. Sessions expire after
// the configured TTL; expired tokens fail lookup and are removed.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[string]Session
	now      func() time.Time
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create issues a fresh token for the user.
func (m *MemoryStore) Create(userID string) Session {
	sess := Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: m.now().Add(m.ttl),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.Token] = sess
	return sess
}

// Lookup resolves a token to its user id.
func (m *MemoryStore) Lookup(token string) (string, bool) {
	m.mu.RLock()
	sess, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}
	if m.now().After(sess.ExpiresAt) {
		m.Invalidate(token)
		return "", false
	}
	return sess.UserID, true
}

// Invalidate removes a token. Unknown tokens are a no-op.
func (m *MemoryStore) Invalidate(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}
