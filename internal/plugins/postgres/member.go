package postgres

import (
	"chatwire/internal/core/domain"
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
)

/*
	-- Conversation members
	CREATE TABLE conversation_members (
		id              UUID PRIMARY KEY,
		conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
		user_id         UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role            VARCHAR(16) NOT NULL DEFAULT 'member',
		joined_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (conversation_id, user_id)
	);
*/

type MemberRepo struct {
	db *sql.DB
}

func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

func (r *MemberRepo) AddMember(ctx context.Context, m *domain.ConversationMember) error {
	exec := getExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO conversation_members (id, conversation_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.ConversationID, m.UserID, m.Role, m.JoinedAt,
	)
	if err != nil && strings.Contains(err.Error(), "conversation_members") && strings.Contains(err.Error(), "unique") {
		return domain.ErrAlreadyMember
	}
	return err
}

func (r *MemberRepo) IsMember(ctx context.Context, convID, userID uuid.UUID) (bool, error) {
	exec := getExecutor(ctx, r.db)
	var exists bool
	err := exec.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM conversation_members
			WHERE conversation_id = $1 AND user_id = $2
		)`, convID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *MemberRepo) ListMembers(ctx context.Context, convID uuid.UUID) ([]domain.ConversationMember, error) {
	exec := getExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx, `
		SELECT id, conversation_id, user_id, role, joined_at
		FROM conversation_members
		WHERE conversation_id = $1
		ORDER BY joined_at ASC`, convID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []domain.ConversationMember
	for rows.Next() {
		var m domain.ConversationMember
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
