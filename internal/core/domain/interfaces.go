package domain

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository handles the persistent identity. SaveUser is the
// read-modify-write half of the presence mirror; no optimistic
// concurrency token is required.
type UserRepository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CreateUser(ctx context.Context, u *User) error
	ListUsers(ctx context.Context) ([]User, error)
	SaveUser(ctx context.Context, u *User) error
}

type ConversationRepository interface {
	GetConversationByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	CreateConversation(ctx context.Context, c *Conversation) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Conversation, error)
}

type MemberRepository interface {
	AddMember(ctx context.Context, m *ConversationMember) error
	IsMember(ctx context.Context, convID, userID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, convID uuid.UUID) ([]ConversationMember, error)
}

// MessageRepository persists chat messages. SaveMessage must commit
// before any fan-out publish happens.
type MessageRepository interface {
	SaveMessage(ctx context.Context, m *Message) error
	ListRecent(ctx context.Context, convID uuid.UUID, limit int) ([]Message, error)
}
