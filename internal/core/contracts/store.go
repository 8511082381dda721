package contracts

import (
	"context"
	"time"
)

// ExpiringStore is a key marker store with automatic expiry, backing
// the token denylist. Entries are never deleted explicitly; they age
// out via the store's TTL mechanism.
type ExpiringStore interface {
	Set(ctx context.Context, key string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}
