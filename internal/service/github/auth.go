package github

import (
	"context"
	"fmt"

	"github.com/sandevgo/hubgram/internal/core"
	"github.com/sandevgo/hubgram/pkg/log"
)

// MenuShower replaces a user's menu stack and redraws the top menu in an
// existing message. before runs under the same per-user lock that guards
// menu navigation.
type MenuShower interface {
	Show(ctx context.Context, userID int64, messageID int, stack []string, before func(context.Context) error) error
}

// AuthFlow completes a GitHub login started from the settings menu.
type AuthFlow struct {
	exchanger core.TokenExchanger
	sessions  core.SessionRepository
	menus     MenuShower
	target    []string
	metrics   *Metrics
}

// NewAuthFlow returns a flow that leaves the user on target (a menu stack,
// root first) once the token is stored.
func NewAuthFlow(
	exchanger core.TokenExchanger,
	sessions core.SessionRepository,
	menus MenuShower,
	target []string,
	metrics *Metrics,
) *AuthFlow {
	return &AuthFlow{
		exchanger: exchanger,
		sessions:  sessions,
		menus:     menus,
		target:    target,
		metrics:   metrics,
	}
}

// CompleteAuth exchanges cb.Code for an access token, stores it in the
// user's session and reopens the target menu in cb.MessageID. The whole
// completion holds the user's menu lock, so completions and menu actions for
// the same user never interleave.
func (a *AuthFlow) CompleteAuth(ctx context.Context, cb core.AuthCallback) (err error) {
	defer func() { a.metrics.login(err) }()

	logger := log.FromCtx(ctx).With().Int64("user_id", cb.UserID).Logger()

	storeToken := func(ctx context.Context) error {
		token, err := a.exchanger.Exchange(ctx, cb.Code, cb.State)
		if err != nil {
			return fmt.Errorf("failed to exchange code for user %d: %w", cb.UserID, err)
		}
		if token == "" {
			return fmt.Errorf("%w: empty access token for user %d", core.ErrAuth, cb.UserID)
		}

		logger.Debug().Msg("obtained github access token")

		if err := a.sessions.Set(ctx, cb.UserID, core.SessionAccessToken, token); err != nil {
			return fmt.Errorf("failed to store access token: %w", err)
		}
		return nil
	}

	stack := append([]string(nil), a.target...)
	if err := a.menus.Show(ctx, cb.UserID, cb.MessageID, stack, storeToken); err != nil {
		return err
	}

	logger.Info().Msg("github login completed")
	return nil
}
