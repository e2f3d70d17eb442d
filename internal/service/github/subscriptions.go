package github

import (
	"context"
	"iter"

	"github.com/sandevgo/hubgram/internal/core"
)

// SubscribedChats yields the ids of chats whose subscription set contains
// repo.ID. The store is read again on every range.
func SubscribedChats(ctx context.Context, chats core.ChatRepository, repo core.Repository) iter.Seq2[int64, error] {
	return func(yield func(int64, error) bool) {
		for chat, err := range chats.Chats(ctx) {
			if err != nil {
				yield(0, err)
				return
			}
			if chat.Subscribed(repo.ID) {
				if !yield(chat.ID, nil) {
					return
				}
			}
		}
	}
}
