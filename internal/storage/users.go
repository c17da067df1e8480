package storage

import (
	"context"
	"fmt"
	"time"

	"fatura/internal/core"
)

// CreateUser inserts a new user. A duplicate email yields ErrConflict.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *core.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.DisplayName, user.PasswordHash,
		user.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapConstraint(err))
	}
	return nil
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *SQLiteStore) getUser(ctx context.Context, column, value string) (*core.User, error) {
	query := `
		SELECT id, email, display_name, password_hash, created_at
		FROM users
		WHERE ` + column + ` = ?`

	user := &core.User{}
	var created string
	err := s.db.QueryRowContext(ctx, query, value).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&created,
	)
	if err != nil {
		if err = notFound(err); err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return user, nil
}
