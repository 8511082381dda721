package services

import (
	"context"
	"testing"
	"time"

	"chatwire/internal/core/domain"
	"chatwire/internal/plugins/memory"

	"github.com/google/uuid"
)

func TestSubscriberReceivesPublishedMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fanout := NewFanoutService(testLogger(), memory.NewBroadcaster())
	convID := uuid.New()

	msgs, err := fanout.SubscribeMessages(ctx, convID)
	if err != nil {
		t.Fatal(err)
	}

	sent := domain.NewMessage(convID, uuid.New(), "hello")
	if err := fanout.PublishMessage(ctx, sent); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-msgs:
		if got.ID != sent.ID || got.Content != "hello" {
			t.Errorf("received %+v, want id=%s content=hello", got, sent.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}

	// Exactly once: nothing further should arrive.
	select {
	case got := <-msgs:
		t.Fatalf("unexpected second delivery: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLateSubscriberReceivesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fanout := NewFanoutService(testLogger(), memory.NewBroadcaster())
	convID := uuid.New()

	if err := fanout.PublishMessage(ctx, domain.NewMessage(convID, uuid.New(), "early")); err != nil {
		t.Fatal(err)
	}

	msgs, err := fanout.SubscribeMessages(ctx, convID)
	if err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-msgs:
		t.Fatalf("late subscriber must not see earlier publishes, got %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribersOnOtherTopicsUnaffected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fanout := NewFanoutService(testLogger(), memory.NewBroadcaster())
	convA, convB := uuid.New(), uuid.New()

	msgsB, err := fanout.SubscribeMessages(ctx, convB)
	if err != nil {
		t.Fatal(err)
	}
	if err := fanout.PublishMessage(ctx, domain.NewMessage(convA, uuid.New(), "for A")); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-msgsB:
		t.Fatalf("message for conversation A delivered to B: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMalformedPayloadIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broadcaster := memory.NewBroadcaster()
	fanout := NewFanoutService(testLogger(), broadcaster)
	convID := uuid.New()

	msgs, err := fanout.SubscribeMessages(ctx, convID)
	if err != nil {
		t.Fatal(err)
	}
	if err := broadcaster.Publish(ctx, domain.TopicMessages(convID), []byte("not json")); err != nil {
		t.Fatal(err)
	}
	sent := domain.NewMessage(convID, uuid.New(), "after garbage")
	if err := fanout.PublishMessage(ctx, sent); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-msgs:
		if got.ID != sent.ID {
			t.Errorf("expected the valid message to survive, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("valid message never arrived")
	}
}

func TestSubscribeOnlineDecodesPresence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	broadcaster := memory.NewBroadcaster()
	fanout := NewFanoutService(testLogger(), broadcaster)
	userID := uuid.New()

	updates, err := fanout.SubscribeOnline(ctx, userID)
	if err != nil {
		t.Fatal(err)
	}

	repo := newFakeUserRepo(userID)
	tracker := NewPresenceTracker(testLogger(), repo, broadcaster, time.Hour, time.Hour)
	tracker.Heartbeat(ctx, userID)

	select {
	case u := <-updates:
		if u.UserID != userID || !u.IsOnline {
			t.Errorf("unexpected update %+v", u)
		}
	case <-time.After(time.Second):
		t.Fatal("presence update never arrived")
	}
}

func TestSubscriptionClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fanout := NewFanoutService(testLogger(), memory.NewBroadcaster())

	msgs, err := fanout.SubscribeMessages(ctx, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case _, ok := <-msgs:
		if ok {
			t.Error("expected channel close, got a value")
		}
	case <-time.After(time.Second):
		t.Fatal("channel did not close after cancel")
	}
}
