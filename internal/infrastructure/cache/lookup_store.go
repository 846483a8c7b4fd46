package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
)

// LookupStore is a byte-oriented TTL cache used to memoize upstream admin
// API lookups. Both the in-memory and Redis implementations satisfy it.
type LookupStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// storeEntry wraps a cached value with expiration time
type storeEntry struct {
	value     []byte
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *storeEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryLookupStore implements LookupStore using in-memory storage.
// Suitable for single-instance deployments
type InMemoryLookupStore struct {
	entries sync.Map // map[string]*storeEntry
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// NewInMemoryLookupStore creates a new in-memory lookup store
func NewInMemoryLookupStore(logger *zap.Logger) *InMemoryLookupStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := &InMemoryLookupStore{
		logger: logger,
		stopCh: make(chan struct{}),
	}

	go store.cleanupExpired()

	return store
}

// Get retrieves a cached value by key
func (s *InMemoryLookupStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if value, ok := s.entries.Load(key); ok {
		entry := value.(*storeEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&s.hits, 1)
			return entry.value, true, nil
		}
		// Expired, remove from cache
		s.entries.Delete(key)
	}

	atomic.AddInt64(&s.misses, 1)
	return nil, false, nil
}

// Set stores a value with a TTL
func (s *InMemoryLookupStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.entries.Store(key, &storeEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes a cached value
func (s *InMemoryLookupStore) Delete(ctx context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}

// Close stops the background cleanup goroutine
func (s *InMemoryLookupStore) Close() error {
	if atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		close(s.stopCh)
	}
	return nil
}

// Stats returns cache hit and miss counters
func (s *InMemoryLookupStore) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&s.hits), atomic.LoadInt64(&s.misses)
}

// cleanupExpired periodically removes expired entries from the cache
func (s *InMemoryLookupStore) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.doCleanup()
		}
	}
}

// doCleanup removes expired entries
func (s *InMemoryLookupStore) doCleanup() {
	var removed int
	s.entries.Range(func(key, value any) bool {
		if value.(*storeEntry).isExpired() {
			s.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		s.logger.Debug("Cleaned up expired lookup cache entries",
			zap.Int("removed", removed))
	}
}

// Ensure InMemoryLookupStore implements LookupStore
var _ LookupStore = (*InMemoryLookupStore)(nil)
