package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chatwire/internal/plugins/memory"
)

// captureStore records Set calls and can fail Exists on demand.
type captureStore struct {
	keys      map[string]time.Duration
	existsErr error
}

func newCaptureStore() *captureStore {
	return &captureStore{keys: make(map[string]time.Duration)}
}

func (s *captureStore) Set(_ context.Context, key string, ttl time.Duration) error {
	s.keys[key] = ttl
	return nil
}

func (s *captureStore) Exists(_ context.Context, key string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.keys[key]
	return ok, nil
}

func TestBlacklistMarksOnlyThatToken(t *testing.T) {
	guard := NewRevocationGuard(testLogger(), memory.NewExpiringStore(), false)
	ctx := context.Background()

	if err := guard.Blacklist(ctx, "token-a", time.Hour); err != nil {
		t.Fatal(err)
	}
	if !guard.IsBlacklisted(ctx, "token-a") {
		t.Error("token-a should be blacklisted")
	}
	if guard.IsBlacklisted(ctx, "token-b") {
		t.Error("token-b should not be blacklisted")
	}
}

func TestBlacklistTTLFloor(t *testing.T) {
	store := newCaptureStore()
	guard := NewRevocationGuard(testLogger(), store, false)
	ctx := context.Background()

	if err := guard.Blacklist(ctx, "short-lived", 5*time.Second); err != nil {
		t.Fatal(err)
	}
	if err := guard.Blacklist(ctx, "long-lived", 2*time.Hour); err != nil {
		t.Fatal(err)
	}

	var got []time.Duration
	for _, ttl := range store.keys {
		got = append(got, ttl)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct keys, got %d", len(got))
	}
	found := map[time.Duration]bool{}
	for _, ttl := range got {
		found[ttl] = true
	}
	if !found[time.Minute] {
		t.Error("ttl below the floor should be raised to one minute")
	}
	if !found[2*time.Hour] {
		t.Error("ttl above the floor should pass through unchanged")
	}
}

func TestBlacklistKeysAreHashed(t *testing.T) {
	store := newCaptureStore()
	guard := NewRevocationGuard(testLogger(), store, false)
	ctx := context.Background()

	raw := "eyJhbGciOiJIUzI1NiJ9.secret.payload"
	if err := guard.Blacklist(ctx, raw, time.Hour); err != nil {
		t.Fatal(err)
	}
	for key := range store.keys {
		if !strings.HasPrefix(key, "token:blacklist:") {
			t.Errorf("key %q missing namespace prefix", key)
		}
		if strings.Contains(key, raw) {
			t.Error("raw token must not appear in the store key")
		}
	}
}

func TestBlacklistEntryExpires(t *testing.T) {
	store := memory.NewExpiringStore()
	_ = NewRevocationGuard(testLogger(), store, false)
	ctx := context.Background()

	// Write through the store directly to use a sub-floor TTL.
	if err := store.Set(ctx, "token:blacklist:test", 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	found, err := store.Exists(ctx, "token:blacklist:test")
	if err != nil || !found {
		t.Fatalf("entry should exist before expiry (found=%v err=%v)", found, err)
	}
	time.Sleep(50 * time.Millisecond)
	found, err = store.Exists(ctx, "token:blacklist:test")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("entry should be gone after its TTL")
	}
}

func TestStoreOutageFailOpenAndClosed(t *testing.T) {
	store := newCaptureStore()
	store.existsErr = errors.New("connection refused")
	ctx := context.Background()

	open := NewRevocationGuard(testLogger(), store, false)
	if open.IsBlacklisted(ctx, "any") {
		t.Error("fail-open guard should treat outage as not blacklisted")
	}

	closed := NewRevocationGuard(testLogger(), store, true)
	if !closed.IsBlacklisted(ctx, "any") {
		t.Error("fail-closed guard should treat outage as blacklisted")
	}
}
