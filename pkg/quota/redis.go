package quota

import (
	"context"

	"github.com/jordanlanch/scribely/pkg/cache"
)

// RedisStore keeps counters in Redis so they survive restarts and are shared across instances
type RedisStore struct {
	cache *cache.Client
}

// NewRedisStore creates a store backed by the shared cache client
func NewRedisStore(c *cache.Client) *RedisStore {
	return &RedisStore{cache: c}
}

// Get returns the counter for key, 0 when unset
func (s *RedisStore) Get(ctx context.Context, key string) (int, error) {
	n, err := s.cache.Counter(ctx, key)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Incr atomically increments the counter for key
func (s *RedisStore) Incr(ctx context.Context, key string) (int, error) {
	n, err := s.cache.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
