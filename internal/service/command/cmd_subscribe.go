package command

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/sandevgo/hubgram/internal/core"
)

type SubscribeCommand struct {
	chats     core.ChatRepository
	sessions  core.SessionRepository
	resolver  core.RepoResolver
	formatter *ResponseFormatter
}

func NewSubscribeCommand(
	chats core.ChatRepository,
	sessions core.SessionRepository,
	resolver core.RepoResolver,
) *SubscribeCommand {
	return &SubscribeCommand{
		chats:     chats,
		sessions:  sessions,
		resolver:  resolver,
		formatter: NewResponseFormatter(),
	}
}

func (c *SubscribeCommand) Name() string {
	return "subscribe"
}

func (c *SubscribeCommand) Description() string {
	return "Subscribe this chat to a repository"
}

func (c *SubscribeCommand) Execute(ctx context.Context, req core.CommandRequest) (string, error) {
	if len(req.Args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Subscribe"),
			c.formatter.Usage("/subscribe owner/name"),
			c.formatter.Examples([]string{"/subscribe octocat/Hello-World"}),
		), nil
	}

	token, ok, err := c.sessions.Get(ctx, req.UserID, core.SessionAccessToken)
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return c.formatter.Combine(
			c.formatter.Error(c.Name(), core.ErrNotLoggedIn),
			c.formatter.Tip("open /settings and log in to GitHub first"),
		), nil
	}

	repo, err := c.resolver.Repository(ctx, token, strings.TrimSpace(req.Args[0]))
	if errors.Is(err, core.ErrRepoNotFound) {
		return c.formatter.Error(c.Name(), err), nil
	}
	if err != nil {
		return "", err
	}

	if err := c.chats.Subscribe(ctx, req.ChatID, repo); err != nil {
		return "", fmt.Errorf("failed to subscribe: %w", err)
	}

	return c.formatter.Success(fmt.Sprintf("Subscribed to `%s`", repo.FullName)), nil
}

type UnsubscribeCommand struct {
	chats     core.ChatRepository
	formatter *ResponseFormatter
}

func NewUnsubscribeCommand(chats core.ChatRepository) *UnsubscribeCommand {
	return &UnsubscribeCommand{chats: chats, formatter: NewResponseFormatter()}
}

func (c *UnsubscribeCommand) Name() string {
	return "unsubscribe"
}

func (c *UnsubscribeCommand) Description() string {
	return "Unsubscribe this chat from a repository"
}

func (c *UnsubscribeCommand) Execute(ctx context.Context, req core.CommandRequest) (string, error) {
	if len(req.Args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Unsubscribe"),
			c.formatter.Usage("/unsubscribe owner/name"),
		), nil
	}

	chat, err := c.chats.GetChat(ctx, req.ChatID)
	if err != nil {
		return "", fmt.Errorf("failed to load chat: %w", err)
	}

	name := strings.TrimSpace(req.Args[0])
	for id, fullName := range chat.Repos {
		if strings.EqualFold(fullName, name) {
			if err := c.chats.Unsubscribe(ctx, req.ChatID, id); err != nil {
				return "", fmt.Errorf("failed to unsubscribe: %w", err)
			}
			return c.formatter.Success(fmt.Sprintf("Unsubscribed from `%s`", fullName)), nil
		}
	}

	return c.formatter.Error(c.Name(), fmt.Errorf("this chat is not subscribed to %s", name)), nil
}

type SubscriptionsCommand struct {
	chats     core.ChatRepository
	formatter *ResponseFormatter
}

func NewSubscriptionsCommand(chats core.ChatRepository) *SubscriptionsCommand {
	return &SubscriptionsCommand{chats: chats, formatter: NewResponseFormatter()}
}

func (c *SubscriptionsCommand) Name() string {
	return "subscriptions"
}

func (c *SubscriptionsCommand) Description() string {
	return "List repositories this chat is subscribed to"
}

func (c *SubscriptionsCommand) Execute(ctx context.Context, req core.CommandRequest) (string, error) {
	chat, err := c.chats.GetChat(ctx, req.ChatID)
	if err != nil {
		return "", fmt.Errorf("failed to load chat: %w", err)
	}

	if len(chat.Repos) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Subscriptions"),
			"No subscriptions yet.\n",
			c.formatter.Tip("use /subscribe owner/name"),
		), nil
	}

	names := slices.Sorted(maps.Values(chat.Repos))
	items := make([]string, len(names))
	for i, n := range names {
		items[i] = "`" + n + "`"
	}

	return c.formatter.Combine(
		c.formatter.Info("Subscriptions"),
		c.formatter.Label("Repositories", strconv.Itoa(len(names))),
		c.formatter.List(items),
	), nil
}
