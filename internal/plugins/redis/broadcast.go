package redis

import (
	"chatwire/pkg/logging"
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const resubscribeBackoff = time.Second

// Broadcaster implements contracts.Broadcaster on Redis pub/sub.
// Topics map one-to-one to Redis channels; payloads are opaque bytes.
type Broadcaster struct {
	log *slog.Logger
	rdb *redis.Client
}

func NewBroadcaster(log *slog.Logger, rdb *redis.Client) *Broadcaster {
	return &Broadcaster{log: log, rdb: rdb}
}

func (b *Broadcaster) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.rdb.Publish(ctx, topic, payload).Err()
}

// Subscribe confirms the channel registration before returning, so a
// payload published after Subscribe returns is guaranteed to reach the
// stream. If the connection drops mid-subscription the loop
// resubscribes with a small backoff instead of closing the channel;
// only ctx cancellation ends the stream.
func (b *Broadcaster) Subscribe(ctx context.Context, topic string) (<-chan []byte, error) {
	pubsub := b.rdb.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}
	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		for {
			b.consume(ctx, topic, pubsub, out)
			_ = pubsub.Close()
			pubsub = b.resubscribe(ctx, topic)
			if pubsub == nil {
				return
			}
		}
	}()
	return out, nil
}

// resubscribe retries until the channel registration is confirmed
// again, or returns nil when ctx is cancelled.
func (b *Broadcaster) resubscribe(ctx context.Context, topic string) *redis.PubSub {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(resubscribeBackoff):
		}
		b.log.WarnContext(ctx, "broadcast - subscribe - reconnecting", logging.Topic(topic))
		pubsub := b.rdb.Subscribe(ctx, topic)
		if _, err := pubsub.Receive(ctx); err != nil {
			b.log.WarnContext(ctx, "broadcast - subscribe - resubscribe failed", logging.Topic(topic), logging.Err(err))
			_ = pubsub.Close()
			continue
		}
		return pubsub
	}
}

// consume pumps the pubsub channel into out until it closes or ctx is
// cancelled.
func (b *Broadcaster) consume(ctx context.Context, topic string, pubsub *redis.PubSub, out chan<- []byte) {
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				b.log.WarnContext(ctx, "broadcast - consume - transport channel closed", logging.Topic(topic))
				return
			}
			select {
			case out <- []byte(m.Payload):
			case <-ctx.Done():
				return
			}
		}
	}
}
