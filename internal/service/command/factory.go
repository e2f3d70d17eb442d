package command

import (
	"github.com/sandevgo/hubgram/internal/core"
)

func NewCommands(
	chats core.ChatRepository,
	sessions core.SessionRepository,
	resolver core.RepoResolver,
) []core.Command {
	return []core.Command{
		NewSubscribeCommand(chats, sessions, resolver),
		NewUnsubscribeCommand(chats),
		NewSubscriptionsCommand(chats),
	}
}
