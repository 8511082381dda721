package memory

import (
	"context"
	"sync"
)

const subscriberBuffer = 64

// Broadcaster is the in-process contracts.Broadcaster: a per-topic
// subscriber registry with no persistence and no replay. Suitable for
// tests and single-process deployments; cross-process fan-out needs
// the Redis transport.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID int
	topics map[string]map[int]chan []byte
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		topics: make(map[string]map[int]chan []byte),
	}
}

// Publish delivers payload to every subscriber registered on topic at
// the time of the call. A subscriber whose buffer is full misses the
// payload; delivery is fire-and-forget.
func (b *Broadcaster) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.topics[topic] {
		select {
		case sub <- payload:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber. The returned channel sees
// payloads in publish order and closes when ctx is cancelled.
func (b *Broadcaster) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	sub := make(chan []byte, subscriberBuffer)
	b.mu.Lock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[int]chan []byte)
	}
	id := b.nextID
	b.nextID++
	b.topics[topic][id] = sub
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.topics[topic], id)
		if len(b.topics[topic]) == 0 {
			delete(b.topics, topic)
		}
		// Closing under the lock: Publish sends while holding the read
		// lock, so no send can race this close.
		close(sub)
		b.mu.Unlock()
	}()
	return sub, nil
}
