package allocation

import (
	"context"
	"sync"
	"time"

	"github.com/erp/allocation/internal/domain/allocation"
	"github.com/erp/allocation/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an idle session is kept before eviction.
const DefaultSessionTTL = 30 * time.Minute

// SessionStore keeps open allocation sessions in memory for their lifetime.
// Sessions are evicted on close, successful drain, or TTL expiry. Access to a
// session is serialized through Do, which matches the single-operator,
// single-session model of the allocation flow.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*sessionEntry
	ttl     time.Duration
}

type sessionEntry struct {
	mu       sync.Mutex
	session  *allocation.Session
	lastSeen time.Time
}

// NewSessionStore creates a session store with the given idle TTL.
// A non-positive ttl falls back to DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		entries: make(map[uuid.UUID]*sessionEntry),
		ttl:     ttl,
	}
}

// Put registers a newly opened session.
func (st *SessionStore) Put(session *allocation.Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.entries[session.ID] = &sessionEntry{
		session:  session,
		lastSeen: time.Now(),
	}
}

// Do runs fn against the session with exclusive access. The session's idle
// timer resets on every access.
func (st *SessionStore) Do(id uuid.UUID, fn func(*allocation.Session) error) error {
	st.mu.RLock()
	entry, ok := st.entries[id]
	st.mu.RUnlock()
	if !ok {
		return shared.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.lastSeen = time.Now()
	return fn(entry.session)
}

// Delete removes a session from the store.
func (st *SessionStore) Delete(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.entries, id)
}

// Len returns the number of open sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.entries)
}

// EvictExpired removes sessions idle for longer than the TTL and returns how
// many were evicted.
func (st *SessionStore) EvictExpired() int {
	cutoff := time.Now().Add(-st.ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	evicted := 0
	for id, entry := range st.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(st.entries, id)
			evicted++
		}
	}
	return evicted
}

// StartCleanup evicts expired sessions on the given interval until ctx is
// cancelled.
func (st *SessionStore) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.EvictExpired()
			}
		}
	}()
}
