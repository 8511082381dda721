package services

import (
	"chatwire/internal/core/contracts"
	"chatwire/internal/core/domain"
	"chatwire/pkg/logging"
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
)

// FanoutService bridges the broadcast channel to typed streams: it
// pushes persisted messages to conversation topics and decodes topic
// payloads back into domain values for live subscribers.
type FanoutService struct {
	log       *slog.Logger
	broadcast contracts.Broadcaster
}

func NewFanoutService(log *slog.Logger, broadcast contracts.Broadcaster) *FanoutService {
	return &FanoutService{log: log, broadcast: broadcast}
}

// PublishMessage publishes an already-persisted message to its
// conversation topic. Callers must only invoke this after the storage
// write committed; the publish itself is fire-and-forget.
func (s *FanoutService) PublishMessage(ctx context.Context, msg *domain.Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	topic := domain.TopicMessages(msg.ConversationID)
	if err := s.broadcast.Publish(ctx, topic, raw); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "fanout - publish message - published", logging.Topic(topic), logging.Conversation(msg.ConversationID))
	return nil
}

// SubscribeMessages streams messages published to the conversation
// after the subscription registered. The channel closes when ctx is
// cancelled.
func (s *FanoutService) SubscribeMessages(ctx context.Context, convID uuid.UUID) (<-chan domain.Message, error) {
	return subscribeJSON[domain.Message](ctx, s.log, s.broadcast, domain.TopicMessages(convID))
}

// SubscribeOnline streams presence transitions for one user. The
// current state is not replayed; a late subscriber starts empty.
func (s *FanoutService) SubscribeOnline(ctx context.Context, userID uuid.UUID) (<-chan domain.PresenceUpdate, error) {
	return subscribeJSON[domain.PresenceUpdate](ctx, s.log, s.broadcast, domain.TopicOnline(userID))
}

// subscribeJSON adapts a raw payload subscription into a typed one.
// Unparseable payloads are dropped with a log line rather than
// terminating the stream.
func subscribeJSON[T any](ctx context.Context, log *slog.Logger, b contracts.Broadcaster, topic string) (<-chan T, error) {
	raw, err := b.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}
	out := make(chan T)
	go func() {
		defer close(out)
		for payload := range raw {
			var v T
			if err := json.Unmarshal(payload, &v); err != nil {
				log.WarnContext(ctx, "fanout - subscribe - dropping malformed payload", logging.Topic(topic), logging.Err(err))
				continue
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
