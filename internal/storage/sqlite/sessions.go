package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// SessionsRepo is the per-user key-value store and menu stack.
type SessionsRepo struct {
	db *sql.DB
}

func NewSessionsRepo(db *sql.DB) *SessionsRepo {
	return &SessionsRepo{db: db}
}

func (r *SessionsRepo) Get(ctx context.Context, userID int64, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM user_data WHERE user_id = ? AND key = ?`, userID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get user data: %w", err)
	}
	return value, true, nil
}

func (r *SessionsRepo) Set(ctx context.Context, userID int64, key, value string) error {
	query := `INSERT INTO user_data (user_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.ExecContext(ctx, query, userID, key, value); err != nil {
		return fmt.Errorf("failed to set user data: %w", err)
	}
	return nil
}

func (r *SessionsRepo) Delete(ctx context.Context, userID int64, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_data WHERE user_id = ? AND key = ?`, userID, key); err != nil {
		return fmt.Errorf("failed to delete user data: %w", err)
	}
	return nil
}

func (r *SessionsRepo) MenuStack(ctx context.Context, userID int64) ([]string, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT stack FROM menu_stacks WHERE user_id = ?`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu stack: %w", err)
	}

	var stack []string
	if err := json.Unmarshal([]byte(raw), &stack); err != nil {
		return nil, fmt.Errorf("failed to unmarshal menu stack: %w", err)
	}
	return stack, nil
}

func (r *SessionsRepo) SetMenuStack(ctx context.Context, userID int64, stack []string) error {
	if stack == nil {
		stack = []string{}
	}
	raw, err := json.Marshal(stack)
	if err != nil {
		return fmt.Errorf("failed to marshal menu stack: %w", err)
	}

	query := `INSERT INTO menu_stacks (user_id, stack) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET stack = excluded.stack`
	if _, err := r.db.ExecContext(ctx, query, userID, string(raw)); err != nil {
		return fmt.Errorf("failed to set menu stack: %w", err)
	}
	return nil
}
