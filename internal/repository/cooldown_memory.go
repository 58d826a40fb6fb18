package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryCooldownStore is the in-process cooldown store used when Redis
// is not configured.
type MemoryCooldownStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryCooldownStore constructs the store.
func NewMemoryCooldownStore() *MemoryCooldownStore {
	return &MemoryCooldownStore{entries: make(map[string]time.Time), now: time.Now}
}

// Seen reports whether the label is inside its cooldown window. Expired
// entries are dropped as they are encountered.
func (s *MemoryCooldownStore) Seen(_ context.Context, label string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.entries[label]
	if !ok {
		return false, nil
	}
	if s.now().After(until) {
		delete(s.entries, label)
		return false, nil
	}
	return true, nil
}

// Mark opens a cooldown window for the label.
func (s *MemoryCooldownStore) Mark(_ context.Context, label string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[label] = s.now().Add(ttl)
	return nil
}
