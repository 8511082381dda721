package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ExpiringStore implements contracts.ExpiringStore on Redis key TTLs.
type ExpiringStore struct {
	rdb *redis.Client
}

func NewExpiringStore(rdb *redis.Client) *ExpiringStore {
	return &ExpiringStore{rdb: rdb}
}

func (s *ExpiringStore) Set(ctx context.Context, key string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, "1", ttl).Err()
}

func (s *ExpiringStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
