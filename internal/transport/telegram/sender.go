package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/inbucket/html2text"
	"github.com/sandevgo/hubgram/internal/core"
	"github.com/sandevgo/hubgram/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const maxTelegramMsgLen = 4000 // Safety margin below 4096

const (
	menuUnique   = "menu"
	dataBack     = "back"
	openPrefix   = "open:"
	actionPrefix = "act:"
)

type botAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Sender delivers HTML messages and menus through the Bot API.
type Sender struct {
	api botAPI
}

func NewSender(api botAPI) *Sender {
	return &Sender{api: api}
}

// SendHTML sends text in chunks if needed. A chunk Telegram refuses to
// parse is resent as plain text.
func (s *Sender) SendHTML(ctx context.Context, chatID int64, text string) error {
	logger := log.FromCtx(ctx)
	to := tele.ChatID(chatID)

	chunks := splitHTML(strings.TrimSpace(text), maxTelegramMsgLen)
	for i, chunk := range chunks {
		_, err := s.api.Send(to, chunk, tele.ModeHTML, tele.NoPreview)
		if isParseError(err) {
			logger.Warn().Err(err).Int64("chat_id", chatID).Int("chunk", i).Msg("html rejected, sending plain text")
			_, err = s.api.Send(to, plainText(chunk), tele.NoPreview)
		}
		if err != nil {
			logger.Error().Err(err).Int("chunk", i).Int("len", len(chunk)).Msg("failed to send telegram chunk")
			return err
		}
	}
	return nil
}

// EditMenu replaces the text and keyboard of an existing message.
func (s *Sender) EditMenu(ctx context.Context, chatID int64, messageID int, view core.MenuView) error {
	msg := &tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}

	_, err := s.api.Edit(msg, view.Text, toMarkup(view), tele.ModeHTML, tele.NoPreview)
	if errors.Is(err, tele.ErrSameMessageContent) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to edit message %d in chat %d: %w", messageID, chatID, err)
	}
	return nil
}

func toMarkup(view core.MenuView) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(view.Buttons))
	for _, line := range view.Buttons {
		btns := make([]tele.Btn, 0, len(line))
		for _, b := range line {
			switch {
			case b.URL != "":
				btns = append(btns, m.URL(b.Text, b.URL))
			case b.Back:
				btns = append(btns, m.Data(b.Text, menuUnique, dataBack))
			case b.Action != "":
				btns = append(btns, m.Data(b.Text, menuUnique, actionPrefix+b.Action))
			case b.Menu != "":
				btns = append(btns, m.Data(b.Text, menuUnique, openPrefix+b.Menu))
			}
		}
		if len(btns) > 0 {
			rows = append(rows, m.Row(btns...))
		}
	}
	m.Inline(rows...)
	return m
}

func isParseError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "can't parse entities")
}

func plainText(chunk string) string {
	text, err := html2text.FromString(chunk, html2text.Options{OmitLinks: false})
	if err != nil {
		return chunk
	}
	return text
}

// splitHTML splits text into chunks respecting Telegram's limit.
// It tries to split at newlines to preserve formatting.
func splitHTML(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cut := maxLen
		// Try to find a good break point (newline) in the second half of the chunk
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/3 {
			cut = idx
		}
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			// No rune start within the limit, so the input is not valid UTF-8.
			_, size := utf8.DecodeRuneInString(text)
			cut = max(size, maxLen)
		}

		chunks = append(chunks, text[:cut])
		text = strings.TrimSpace(text[cut:])
	}
	return chunks
}
