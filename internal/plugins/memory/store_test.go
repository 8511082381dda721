package memory

import (
	"context"
	"testing"
	"time"
)

func TestExpiringStoreSetAndExists(t *testing.T) {
	s := NewExpiringStore()
	ctx := context.Background()

	if err := s.Set(ctx, "key", time.Hour); err != nil {
		t.Fatal(err)
	}
	found, err := s.Exists(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("key should exist")
	}
	found, err = s.Exists(ctx, "other")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("unset key should not exist")
	}
}

func TestExpiringStoreEviction(t *testing.T) {
	s := NewExpiringStore()
	ctx := context.Background()

	if err := s.Set(ctx, "key", 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	found, err := s.Exists(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("key should be expired")
	}
}

func TestExpiringStoreOverwriteExtendsTTL(t *testing.T) {
	s := NewExpiringStore()
	ctx := context.Background()

	if err := s.Set(ctx, "key", 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "key", time.Hour); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	found, err := s.Exists(ctx, "key")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("re-set key should still exist")
	}
}
