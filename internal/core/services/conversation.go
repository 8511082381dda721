package services

import (
	"chatwire/internal/core/contracts"
	"chatwire/internal/core/domain"
	"chatwire/pkg/logging"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("chatwire-core")

type ConversationService struct {
	log       *slog.Logger
	convRepo  domain.ConversationRepository
	members   domain.MemberRepository
	txManager contracts.TxManager
}

func NewConversationService(
	log *slog.Logger,
	convRepo domain.ConversationRepository,
	members domain.MemberRepository,
	txManager contracts.TxManager,
) *ConversationService {
	return &ConversationService{
		log:       log,
		convRepo:  convRepo,
		members:   members,
		txManager: txManager,
	}
}

// Create makes a conversation and adds the creator as admin in one
// transaction.
func (s *ConversationService) Create(
	ctx context.Context,
	creatorID uuid.UUID,
	convType domain.ConversationType,
	name *string,
) (*domain.Conversation, error) {
	ctx, span := tracer.Start(ctx, "ConversationService.Create", trace.WithAttributes(
		attribute.String("user_id", creatorID.String()),
	))
	defer span.End()
	now := time.Now().UTC()
	conv := &domain.Conversation{
		ID:        uuid.New(),
		Type:      convType,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.convRepo.CreateConversation(txCtx, conv); err != nil {
			return err
		}
		return s.members.AddMember(txCtx, &domain.ConversationMember{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			UserID:         creatorID,
			Role:           domain.RoleAdmin,
			JoinedAt:       now,
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction failed")
		s.log.ErrorContext(ctx, "conversation - create - failed", logging.User(creatorID), logging.Err(err))
		return nil, err
	}
	s.log.InfoContext(ctx, "conversation - create - success", logging.Conversation(conv.ID), logging.User(creatorID))
	return conv, nil
}

// Join adds the user as a regular member.
func (s *ConversationService) Join(ctx context.Context, convID, userID uuid.UUID) (*domain.Conversation, error) {
	conv, err := s.convRepo.GetConversationByID(ctx, convID)
	if err != nil {
		return nil, err
	}
	isMember, err := s.members.IsMember(ctx, convID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, domain.ErrAlreadyMember
	}
	member := &domain.ConversationMember{
		ID:             uuid.New(),
		ConversationID: convID,
		UserID:         userID,
		Role:           domain.RoleMember,
		JoinedAt:       time.Now().UTC(),
	}
	if err := s.members.AddMember(ctx, member); err != nil {
		s.log.ErrorContext(ctx, "conversation - join - add member failed", logging.Conversation(convID), logging.User(userID), logging.Err(err))
		return nil, err
	}
	s.log.InfoContext(ctx, "conversation - join - success", logging.Conversation(convID), logging.User(userID))
	return conv, nil
}

// Get returns the conversation only to its members.
func (s *ConversationService) Get(ctx context.Context, convID, userID uuid.UUID) (*domain.Conversation, error) {
	isMember, err := s.members.IsMember(ctx, convID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, domain.ErrNotMember
	}
	return s.convRepo.GetConversationByID(ctx, convID)
}

func (s *ConversationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	return s.convRepo.ListForUser(ctx, userID)
}

func (s *ConversationService) Members(ctx context.Context, convID uuid.UUID) ([]domain.ConversationMember, error) {
	return s.members.ListMembers(ctx, convID)
}
