package memory

import (
	"context"
	"sync"
	"time"
)

// ExpiringStore is the in-process contracts.ExpiringStore. Expired
// entries are evicted lazily on lookup.
type ExpiringStore struct {
	mu       sync.Mutex
	deadline map[string]time.Time
}

func NewExpiringStore() *ExpiringStore {
	return &ExpiringStore{deadline: make(map[string]time.Time)}
}

func (s *ExpiringStore) Set(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	s.deadline[key] = time.Now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *ExpiringStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dl, ok := s.deadline[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(dl) {
		delete(s.deadline, key)
		return false, nil
	}
	return true, nil
}
