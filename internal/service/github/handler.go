package github

import (
	"context"
	"fmt"

	"github.com/sandevgo/hubgram/internal/core"
	"github.com/sandevgo/hubgram/pkg/conv"
	"github.com/sandevgo/hubgram/pkg/log"
)

type eventHandler func(ctx context.Context, ev core.Event) error

// Handler routes GitHub webhook events to their handlers and announces
// content-bearing events to subscribed chats.
type Handler struct {
	renderer   core.MarkdownRenderer
	policy     *conv.Policy
	chats      core.ChatRepository
	dispatcher *Dispatcher
	metrics    *Metrics
	routes     map[core.EventType]eventHandler
}

func NewHandler(
	renderer core.MarkdownRenderer,
	policy *conv.Policy,
	chats core.ChatRepository,
	dispatcher *Dispatcher,
	metrics *Metrics,
) *Handler {
	h := &Handler{
		renderer:   renderer,
		policy:     policy,
		chats:      chats,
		dispatcher: dispatcher,
		metrics:    metrics,
	}

	h.routes = map[core.EventType]eventHandler{
		core.EventPing:                     h.ping,
		core.EventIssues:                   h.issues,
		core.EventIssueComment:             h.issueComment,
		core.EventPullRequest:              h.pullRequest,
		core.EventPullRequestReview:        h.ignore,
		core.EventPullRequestReviewComment: h.ignore,
		core.EventInstallationRepositories: h.installationRepositories,
	}

	return h
}

// HandleEvent runs the handler registered for ev.Type. Unknown types go to
// the default handler, which only logs.
func (h *Handler) HandleEvent(ctx context.Context, ev core.Event) error {
	label := string(ev.Type)
	handle, ok := h.routes[ev.Type]
	if !ok {
		handle, label = h.unknown, eventUnknown
	}

	err := handle(ctx, ev)
	h.metrics.event(label, err)
	return err
}

func (h *Handler) unknown(ctx context.Context, ev core.Event) error {
	log.FromCtx(ctx).Warn().
		Err(core.ErrUnknownEvent).
		Str("event", string(ev.Type)).
		Interface("payload", ev.Payload).
		Msg("event dropped")
	return nil
}

func (h *Handler) ignore(ctx context.Context, ev core.Event) error {
	log.FromCtx(ctx).Debug().Str("event", string(ev.Type)).Str("action", str(ev.Payload, "action")).Msg("event ignored")
	return nil
}

func (h *Handler) ping(ctx context.Context, ev core.Event) error {
	log.FromCtx(ctx).Info().Interface("payload", ev.Payload).Msg("PING")
	return nil
}

func (h *Handler) installationRepositories(ctx context.Context, ev core.Event) error {
	logger := log.FromCtx(ctx)
	for _, key := range []string{"repositories_added", "repositories_removed"} {
		repos, _ := ev.Payload[key].([]any)
		for _, r := range repos {
			if repo, ok := r.(map[string]any); ok {
				logger.Debug().Str("change", key).Str("repo", str(repo, "full_name")).Msg("installation repositories changed")
			}
		}
	}
	return nil
}

// issues announces every issue action with the rendered issue body.
func (h *Handler) issues(ctx context.Context, ev core.Event) error {
	issue, ok := object(ev.Payload, "issue")
	if !ok {
		return fmt.Errorf("issues event has no issue")
	}
	repo, err := repositoryFrom(ev.Payload)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("<b>%s</b>: issue %s %s by %s",
		conv.EscapeText(repo.FullName),
		link(issue),
		conv.EscapeText(str(ev.Payload, "action")),
		conv.EscapeText(login(issue)),
	)
	return h.announce(ctx, repo, header, str(issue, "body"))
}

func (h *Handler) issueComment(ctx context.Context, ev core.Event) error {
	if str(ev.Payload, "action") != "created" {
		return h.ignore(ctx, ev)
	}

	issue, ok := object(ev.Payload, "issue")
	if !ok {
		return fmt.Errorf("issue_comment event has no issue")
	}
	comment, ok := object(ev.Payload, "comment")
	if !ok {
		return fmt.Errorf("issue_comment event has no comment")
	}
	repo, err := repositoryFrom(ev.Payload)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("<b>%s</b>: %s commented on %s",
		conv.EscapeText(repo.FullName),
		conv.EscapeText(login(comment)),
		link(issue),
	)
	return h.announce(ctx, repo, header, str(comment, "body"))
}

func (h *Handler) pullRequest(ctx context.Context, ev core.Event) error {
	if str(ev.Payload, "action") != "opened" {
		return h.ignore(ctx, ev)
	}

	pr, ok := object(ev.Payload, "pull_request")
	if !ok {
		return fmt.Errorf("pull_request event has no pull_request")
	}
	repo, err := repositoryFrom(ev.Payload)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("<b>%s</b>: pull request %s opened by %s",
		conv.EscapeText(repo.FullName),
		link(pr),
		conv.EscapeText(login(pr)),
	)
	return h.announce(ctx, repo, header, str(pr, "body"))
}

// announce renders body and sends it below header to every chat subscribed
// to repo. A render failure aborts before anything is sent.
func (h *Handler) announce(ctx context.Context, repo core.Repository, header, body string) error {
	text := header
	if body != "" {
		html, err := h.renderer.Render(ctx, body, repo.FullName)
		if err != nil {
			return fmt.Errorf("failed to render body for %s: %w", repo.FullName, err)
		}
		if rendered := h.policy.Render(html); rendered != "" {
			text += "\n\n" + rendered
		}
	}

	return h.dispatcher.Broadcast(ctx, SubscribedChats(ctx, h.chats, repo), text)
}

// link formats an issue or pull request as "#N title" linking to its page.
func link(item map[string]any) string {
	number, _ := integer(item, "number")
	label := conv.EscapeText(fmt.Sprintf("#%d %s", number, str(item, "title")))

	url := str(item, "html_url")
	if url == "" {
		return label
	}
	return fmt.Sprintf(`<a href="%s">%s</a>`, conv.EscapeAttr(url), label)
}
