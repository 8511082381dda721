package services

import (
	"chatwire/internal/core/domain"
	"chatwire/pkg/logging"
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultHistoryLimit = 50

type MessageService struct {
	log     *slog.Logger
	repo    domain.MessageRepository
	members domain.MemberRepository
	fanout  *FanoutService
}

func NewMessageService(
	log *slog.Logger,
	repo domain.MessageRepository,
	members domain.MemberRepository,
	fanout *FanoutService,
) *MessageService {
	return &MessageService{
		log:     log,
		repo:    repo,
		members: members,
		fanout:  fanout,
	}
}

// Send persists the message and then fans it out to live subscribers
// of the conversation. The publish is strictly downstream of the
// committed write: a failed save publishes nothing, and a failed
// publish is a missed notification, not a failed send.
func (s *MessageService) Send(ctx context.Context, senderID, convID uuid.UUID, content string) (*domain.Message, error) {
	ctx, span := tracer.Start(ctx, "MessageService.Send", trace.WithAttributes(
		attribute.String("conversation_id", convID.String()),
		attribute.String("sender_id", senderID.String()),
	))
	defer span.End()
	isMember, err := s.members.IsMember(ctx, convID, senderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !isMember {
		return nil, domain.ErrNotMember
	}
	msg := domain.NewMessage(convID, senderID, content)
	if err := s.repo.SaveMessage(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		s.log.ErrorContext(ctx, "message - send - save failed", logging.Conversation(convID), logging.Err(err))
		return nil, err
	}
	if err := s.fanout.PublishMessage(ctx, msg); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "message - send - fanout failed", logging.Conversation(convID), logging.Err(err))
	}
	s.log.InfoContext(ctx, "message - send - success", logging.Conversation(convID), logging.User(senderID))
	return msg, nil
}

// History returns the most recent messages of a conversation to its
// members, oldest first.
func (s *MessageService) History(ctx context.Context, convID, userID uuid.UUID) ([]domain.Message, error) {
	isMember, err := s.members.IsMember(ctx, convID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, domain.ErrNotMember
	}
	return s.repo.ListRecent(ctx, convID, defaultHistoryLimit)
}
