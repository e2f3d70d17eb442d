package github

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/sandevgo/hubgram/internal/core"
	"github.com/sandevgo/hubgram/pkg/log"
	"golang.org/x/sync/errgroup"
)

// Dispatcher fans a message out to many chats. A failed send never stops
// delivery to the remaining chats.
type Dispatcher struct {
	sender  core.Sender
	limit   int
	metrics *Metrics
}

func NewDispatcher(sender core.Sender, limit int, metrics *Metrics) *Dispatcher {
	if limit < 1 {
		limit = 1
	}
	return &Dispatcher{
		sender:  sender,
		limit:   limit,
		metrics: metrics,
	}
}

// Broadcast sends text to every chat yielded by chats and returns the joined
// per-chat failures, each wrapping core.ErrSend.
func (d *Dispatcher) Broadcast(ctx context.Context, chats iter.Seq2[int64, error], text string) error {
	logger := log.FromCtx(ctx)

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(d.limit)

	sent := 0
	for chatID, err := range chats {
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("failed to list subscribed chats: %w", err))
			mu.Unlock()
			break
		}

		sent++
		g.Go(func() error {
			err := d.sender.SendHTML(ctx, chatID, text)
			d.metrics.message(err)
			if err != nil {
				logger.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
				mu.Lock()
				errs = append(errs, fmt.Errorf("%w: chat %d: %w", core.ErrSend, chatID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Debug().Int("chats", sent).Int("failed", len(errs)).Msg("broadcast finished")
	return errors.Join(errs...)
}
