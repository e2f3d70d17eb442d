package core

import (
	"context"
	"iter"
)

type ChatRepository interface {
	// Chats iterates over every known chat in storage order.
	Chats(ctx context.Context) iter.Seq2[Chat, error]
	GetChat(ctx context.Context, chatID int64) (Chat, error)
	Subscribe(ctx context.Context, chatID int64, repo Repository) error
	Unsubscribe(ctx context.Context, chatID int64, repoID int64) error
}

type SessionRepository interface {
	Get(ctx context.Context, userID int64, key string) (string, bool, error)
	Set(ctx context.Context, userID int64, key, value string) error
	Delete(ctx context.Context, userID int64, key string) error
	MenuStack(ctx context.Context, userID int64) ([]string, error)
	SetMenuStack(ctx context.Context, userID int64, stack []string) error
}
