package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/sandevgo/hubgram/internal/core"
)

type ChatsRepo struct {
	db *sql.DB
}

func NewChatsRepo(db *sql.DB) *ChatsRepo {
	return &ChatsRepo{db: db}
}

// Chats loads every chat with its subscriptions on each range, so the
// sequence always reflects the current table contents.
func (r *ChatsRepo) Chats(ctx context.Context) iter.Seq2[core.Chat, error] {
	return func(yield func(core.Chat, error) bool) {
		chats, err := r.loadChats(ctx)
		if err != nil {
			yield(core.Chat{}, err)
			return
		}
		for _, chat := range chats {
			if !yield(chat, nil) {
				return
			}
		}
	}
}

func (r *ChatsRepo) loadChats(ctx context.Context) ([]core.Chat, error) {
	query := `SELECT c.chat_id, cr.repo_id, cr.full_name
		FROM chats c LEFT JOIN chat_repos cr ON cr.chat_id = c.chat_id
		ORDER BY c.chat_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []core.Chat
	for rows.Next() {
		var (
			chatID   int64
			repoID   sql.NullInt64
			fullName sql.NullString
		)
		if err := rows.Scan(&chatID, &repoID, &fullName); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}

		if len(chats) == 0 || chats[len(chats)-1].ID != chatID {
			chats = append(chats, core.Chat{ID: chatID, Repos: make(map[int64]string)})
		}
		if repoID.Valid {
			chats[len(chats)-1].Repos[repoID.Int64] = fullName.String
		}
	}

	return chats, rows.Err()
}

// GetChat returns the chat with an empty subscription set if it is unknown.
func (r *ChatsRepo) GetChat(ctx context.Context, chatID int64) (core.Chat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT repo_id, full_name FROM chat_repos WHERE chat_id = ?`, chatID)
	if err != nil {
		return core.Chat{}, fmt.Errorf("failed to query chat repos: %w", err)
	}
	defer rows.Close()

	chat := core.Chat{ID: chatID, Repos: make(map[int64]string)}
	for rows.Next() {
		var (
			repoID   int64
			fullName string
		)
		if err := rows.Scan(&repoID, &fullName); err != nil {
			return core.Chat{}, fmt.Errorf("failed to scan chat repo: %w", err)
		}
		chat.Repos[repoID] = fullName
	}

	return chat, rows.Err()
}

func (r *ChatsRepo) Subscribe(ctx context.Context, chatID int64, repo core.Repository) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO chats (chat_id) VALUES (?)`, chatID); err != nil {
		return fmt.Errorf("failed to insert chat: %w", err)
	}

	query := `INSERT INTO chat_repos (chat_id, repo_id, full_name) VALUES (?, ?, ?)
		ON CONFLICT (chat_id, repo_id) DO UPDATE SET full_name = excluded.full_name`
	if _, err := tx.ExecContext(ctx, query, chatID, repo.ID, repo.FullName); err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}

	return tx.Commit()
}

func (r *ChatsRepo) Unsubscribe(ctx context.Context, chatID int64, repoID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM chat_repos WHERE chat_id = ? AND repo_id = ?`, chatID, repoID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}
