package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CooldownStore remembers which labels were recently recognized so the
// check-in flow can suppress repeated chatter. Entries expire on their
// own; the store is advisory and never replaces the day-duplicate rule.
type CooldownStore interface {
	Seen(ctx context.Context, label string) (bool, error)
	Mark(ctx context.Context, label string, ttl time.Duration) error
}

// RedisCooldownStore keeps cooldown marks in Redis so several API
// replicas share one view of recent recognitions.
type RedisCooldownStore struct {
	client *redis.Client
}

// NewRedisCooldownStore constructs the store.
func NewRedisCooldownStore(client *redis.Client) *RedisCooldownStore {
	return &RedisCooldownStore{client: client}
}

func cooldownKey(label string) string {
	return "cooldown:" + label
}

// Seen reports whether the label is inside its cooldown window.
func (s *RedisCooldownStore) Seen(ctx context.Context, label string) (bool, error) {
	if s.client == nil {
		return false, nil
	}
	n, err := s.client.Exists(ctx, cooldownKey(label)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", label, err)
	}
	return n > 0, nil
}

// Mark opens a cooldown window for the label.
func (s *RedisCooldownStore) Mark(ctx context.Context, label string, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, cooldownKey(label), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", label, err)
	}
	return nil
}
