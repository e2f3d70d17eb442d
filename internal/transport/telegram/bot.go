package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/hubgram/internal/config"
	"github.com/sandevgo/hubgram/internal/core"
	"github.com/sandevgo/hubgram/pkg/conv"
	"github.com/sandevgo/hubgram/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

// Navigator drives the settings menus.
type Navigator interface {
	Start(ctx context.Context, userID int64) (core.MenuView, error)
	Open(ctx context.Context, userID int64, messageID int, name string) error
	Back(ctx context.Context, userID int64, messageID int) error
	Action(ctx context.Context, userID int64, messageID int, action string) error
}

type Bot struct {
	bot    *tele.Bot
	sender *Sender
	router core.CmdRouter
	nav    Navigator
}

func NewBot(ctx context.Context, cfg *config.TelegramConfig) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	if cfg.APIURL != "" {
		pref.URL = cfg.APIURL
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:    b,
		sender: NewSender(b),
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	return bot, nil
}

// Sender returns the message sender backed by this bot.
func (b *Bot) Sender() *Sender {
	return b.sender
}

// Register installs the command and menu handlers. It must be called
// before Start.
func (b *Bot) Register(router core.CmdRouter, nav Navigator) {
	b.router = router
	b.nav = nav

	b.bot.Handle("/start", b.handleHelp)
	b.bot.Handle("/help", b.handleHelp)
	b.bot.Handle("/settings", b.handleSettings)
	b.bot.Handle(tele.OnText, b.handleMessage)
	b.bot.Handle(&tele.Btn{Unique: menuUnique}, b.handleMenu)
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("username", b.bot.Me.Username).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func baseContext(c tele.Context) context.Context {
	ctx, ok := c.Get(baseContextKey).(context.Context)
	if !ok {
		return context.Background()
	}
	return log.FromCtx(ctx).With().Int64("chat_id", c.Chat().ID).Logger().WithContext(ctx)
}

func (b *Bot) handleHelp(c tele.Context) error {
	var sb strings.Builder
	sb.WriteString("I forward GitHub issues and pull requests to this chat.\n\n")
	sb.WriteString("/settings - log in to GitHub\n")
	for _, cmd := range b.router.ListCommands() {
		fmt.Fprintf(&sb, "/%s - %s\n", cmd.Name(), cmd.Description())
	}
	return c.Send(conv.EscapeText(sb.String()), tele.ModeHTML)
}

func (b *Bot) handleSettings(c tele.Context) error {
	ctx := baseContext(c)

	if c.Chat().Type != tele.ChatPrivate {
		return c.Send("Open /settings in a private chat with me.")
	}

	view, err := b.nav.Start(ctx, c.Sender().ID)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to open settings")
		return c.Send(fmt.Sprintf("error: %v", err))
	}
	return c.Send(view.Text, toMarkup(view), tele.ModeHTML)
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := baseContext(c)

	req := core.CommandRequest{ChatID: c.Chat().ID, UserID: c.Sender().ID}
	out, ok := b.router.Execute(ctx, req, c.Text())
	if !ok {
		return nil
	}

	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(out)))
	if err := b.sender.SendHTML(ctx, req.ChatID, html); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to send command reply")
	}
	return nil
}

func (b *Bot) handleMenu(c tele.Context) error {
	cb := c.Callback()
	if cb == nil || cb.Message == nil {
		return c.Respond()
	}

	ctx := baseContext(c)
	userID := c.Sender().ID
	messageID := cb.Message.ID
	data := c.Data()

	var err error
	switch {
	case data == dataBack:
		err = b.nav.Back(ctx, userID, messageID)
	case strings.HasPrefix(data, openPrefix):
		err = b.nav.Open(ctx, userID, messageID, strings.TrimPrefix(data, openPrefix))
	case strings.HasPrefix(data, actionPrefix):
		err = b.nav.Action(ctx, userID, messageID, strings.TrimPrefix(data, actionPrefix))
	default:
		err = fmt.Errorf("unexpected menu data %q", data)
	}

	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("data", data).Msg("menu callback failed")
		return c.Respond(&tele.CallbackResponse{Text: "Something went wrong", ShowAlert: true})
	}
	return c.Respond()
}
