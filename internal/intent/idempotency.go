package intent

import (
	"context"
	"sync"
	"time"
)

// IdempotencyStore records the result of a (actor, idempotencyKey) pair
// so a repeated call returns the stored prior result without
// re-executing (spec.md §4.6 "Idempotency"). Retention: at least the
// last 24 hours per actor.
type IdempotencyStore interface {
	Get(ctx context.Context, actorKey, idempotencyKey string) (Result, bool, error)
	Put(ctx context.Context, actorKey, idempotencyKey string, result Result, retention time.Duration) error
}

// DefaultRetention is the minimum retention spec.md §4.6 requires.
const DefaultRetention = 24 * time.Hour

type memoryEntry struct {
	result    Result
	expiresAt time.Time
}

// MemoryIdempotencyStore is an in-process IdempotencyStore, suitable for
// tests and single-node deployments without Redis.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryIdempotencyStore returns an empty store.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryIdempotencyStore) key(actorKey, idempotencyKey string) string {
	return actorKey + "\x00" + idempotencyKey
}

// Get implements IdempotencyStore.
func (s *MemoryIdempotencyStore) Get(_ context.Context, actorKey, idempotencyKey string) (Result, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[s.key(actorKey, idempotencyKey)]
	if !ok || s.now().After(entry.expiresAt) {
		return Result{}, false, nil
	}

	return entry.result, true, nil
}

// Put implements IdempotencyStore.
func (s *MemoryIdempotencyStore) Put(_ context.Context, actorKey, idempotencyKey string, result Result, retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[s.key(actorKey, idempotencyKey)] = memoryEntry{result: result, expiresAt: s.now().Add(retention)}

	return nil
}
