package postgres

import (
	"chatwire/internal/core/domain"
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

/*
	-- Conversations
	CREATE TABLE conversations (
		id         UUID PRIMARY KEY,
		type       VARCHAR(16) NOT NULL,
		name       VARCHAR(100),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
*/

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

func (r *ConversationRepo) GetConversationByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	if id == uuid.Nil {
		return nil, domain.ErrInvalidConversationID
	}
	exec := getExecutor(ctx, r.db)
	var c domain.Conversation
	err := exec.QueryRowContext(ctx, `
		SELECT id, type, name, created_at, updated_at
		FROM conversations WHERE id = $1`, id,
	).Scan(&c.ID, &c.Type, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepo) CreateConversation(ctx context.Context, c *domain.Conversation) error {
	exec := getExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO conversations (id, type, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Type, c.Name, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *ConversationRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	exec := getExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT c.id, c.type, c.name, c.created_at, c.updated_at
		FROM conversations c
		JOIN conversation_members m ON m.conversation_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.updated_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var convs []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.Type, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}
