package contracts

import "context"

// Broadcaster is the named-topic publish/subscribe capability the core
// fans out over. Implementations must not replay: a subscriber only
// sees payloads published after its registration completed.
type Broadcaster interface {
	// Publish delivers payload to every live subscriber on topic.
	// Zero subscribers is not an error; delivery is fire-and-forget.
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe registers for topic and returns a channel of payloads
	// in publish order. The channel is closed only when ctx is
	// cancelled; transient transport failures must resubscribe
	// transparently instead of ending the stream.
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
}
