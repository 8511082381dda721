package postgres

import (
	"chatwire/internal/core/domain"
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
)

/*
	-- Users
	CREATE TABLE users (
		id            UUID PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		username      VARCHAR(50)  NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		avatar        VARCHAR(255),
		is_online     BOOLEAN NOT NULL DEFAULT false,
		last_seen_at  TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);
*/

type UserRepo struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, email, username, password_hash, avatar, is_online, last_seen_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Avatar,
		&u.IsOnline,
		&u.LastSeenAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if id == uuid.Nil {
		return nil, domain.ErrInvalidUserID
	}
	exec := getExecutor(ctx, r.db)
	u, err := scanUser(exec.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	exec := getExecutor(ctx, r.db)
	u, err := scanUser(exec.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepo) CreateUser(ctx context.Context, u *domain.User) error {
	exec := getExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Avatar, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		// Map the unique-constraint violation to the offending field.
		msg := err.Error()
		switch {
		case strings.Contains(msg, "users_email"):
			return domain.ErrEmailTaken
		case strings.Contains(msg, "users_username"):
			return domain.ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *UserRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	exec := getExecutor(ctx, r.db)
	rows, err := exec.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SaveUser writes back the mutable fields, including the presence
// projection (is_online, last_seen_at).
func (r *UserRepo) SaveUser(ctx context.Context, u *domain.User) error {
	exec := getExecutor(ctx, r.db)
	result, err := exec.ExecContext(ctx, `
		UPDATE users
		SET email = $2, username = $3, password_hash = $4, avatar = $5,
		    is_online = $6, last_seen_at = $7, updated_at = now()
		WHERE id = $1`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Avatar, u.IsOnline, u.LastSeenAt,
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
