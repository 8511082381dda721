package memory

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case payload, ok := <-ch:
		if !ok {
			t.Fatal("channel closed unexpectedly")
		}
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func TestPublishOrderPreserved(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := NewBroadcaster()

	sub, err := b.Subscribe(ctx, "topic")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if err := b.Publish(ctx, "topic", []byte(fmt.Sprintf("msg-%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 10; i++ {
		got := string(recv(t, sub))
		want := fmt.Sprintf("msg-%d", i)
		if got != want {
			t.Fatalf("payload %d: got %q, want %q", i, got, want)
		}
	}
}

func TestNoReplayForLateSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := NewBroadcaster()

	if err := b.Publish(ctx, "topic", []byte("before")); err != nil {
		t.Fatal(err)
	}
	sub, err := b.Subscribe(ctx, "topic")
	if err != nil {
		t.Fatal(err)
	}
	select {
	case payload := <-sub:
		t.Fatalf("late subscriber received %q", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAllSubscribersReceive(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := NewBroadcaster()

	first, err := b.Subscribe(ctx, "topic")
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Subscribe(ctx, "topic")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Publish(ctx, "topic", []byte("fanout")); err != nil {
		t.Fatal(err)
	}
	if got := string(recv(t, first)); got != "fanout" {
		t.Errorf("first subscriber got %q", got)
	}
	if got := string(recv(t, second)); got != "fanout" {
		t.Errorf("second subscriber got %q", got)
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := NewBroadcaster()

	sub, err := b.Subscribe(ctx, "topic-a")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Publish(ctx, "topic-b", []byte("elsewhere")); err != nil {
		t.Fatal(err)
	}
	select {
	case payload := <-sub:
		t.Fatalf("received payload %q from another topic", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCancelClosesSubscription(t *testing.T) {
	b := NewBroadcaster()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := b.Subscribe(ctx, "topic")
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	select {
	case _, ok := <-sub:
		if ok {
			t.Error("expected close, got payload")
		}
	case <-time.After(time.Second):
		t.Fatal("subscription did not close after cancel")
	}

	// A publish after the unsubscribe must not panic on the closed channel.
	if err := b.Publish(context.Background(), "topic", []byte("after")); err != nil {
		t.Fatal(err)
	}
}
