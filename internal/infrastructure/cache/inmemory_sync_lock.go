package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/integration"
)

// lockEntry represents a held lock with expiration
type lockEntry struct {
	expiresAt time.Time
}

// InMemorySyncLock implements SyncLock using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemorySyncLock struct {
	mu      sync.Mutex
	entries map[uuid.UUID]lockEntry
}

// NewInMemorySyncLock creates a new in-memory sync lock
func NewInMemorySyncLock() *InMemorySyncLock {
	return &InMemorySyncLock{
		entries: make(map[uuid.UUID]lockEntry),
	}
}

// Acquire attempts to take the run lock for one integration.
// Returns false if the lock is held and not yet expired.
func (l *InMemorySyncLock) Acquire(ctx context.Context, integrationID uuid.UUID, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, exists := l.entries[integrationID]; exists {
		if time.Now().Before(e.expiresAt) {
			return false, nil // Already locked
		}
		// Entry exists but expired, will be overwritten
	}

	l.entries[integrationID] = lockEntry{
		expiresAt: time.Now().Add(ttl),
	}
	return true, nil
}

// Release frees the run lock for one integration
func (l *InMemorySyncLock) Release(ctx context.Context, integrationID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, integrationID)
	return nil
}

// Size returns the number of held locks (for testing/monitoring)
func (l *InMemorySyncLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Ensure InMemorySyncLock implements SyncLock
var _ integration.SyncLock = (*InMemorySyncLock)(nil)
