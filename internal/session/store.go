package session

import (
	"sync"
	"time"

	"examcoach/internal/security"
)

// Store keeps live sessions in memory, keyed by session ID. Two browser
// sessions never share state; the only cross-session resource is the
// external history store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	duration time.Duration
}

// NewStore creates a session store issuing sessions with the given lifetime
func NewStore(duration time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		duration: duration,
	}
}

// Create registers a new unauthenticated session and returns it
func (st *Store) Create() *Session {
	now := time.Now()
	sess := &Session{
		ID:        security.GenerateSessionID(),
		CreatedAt: now,
		ExpiresAt: now.Add(st.duration),
	}

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()

	return sess
}

// Get returns the session for the given ID, or nil if unknown or expired
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok || sess.Expired(time.Now()) {
		return nil
	}
	return sess
}

// Delete removes a session
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// CleanupExpired removes all expired sessions and returns how many were dropped
func (st *Store) CleanupExpired() int {
	now := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if sess.Expired(now) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
