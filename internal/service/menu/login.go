package menu

import (
	"context"
	"fmt"

	"github.com/sandevgo/hubgram/internal/core"
)

const ActionLogout = "logout"

// Login starts the GitHub OAuth flow or shows the current login. A nil
// exchanger means OAuth is not configured.
type Login struct {
	sessions  core.SessionRepository
	exchanger core.TokenExchanger
}

func NewLogin(sessions core.SessionRepository, exchanger core.TokenExchanger) *Login {
	return &Login{sessions: sessions, exchanger: exchanger}
}

func (m *Login) Name() string {
	return LoginMenu
}

func (m *Login) Render(ctx context.Context, req core.MenuRequest) (core.MenuView, error) {
	_, loggedIn, err := m.sessions.Get(ctx, req.UserID, core.SessionAccessToken)
	if err != nil {
		return core.MenuView{}, fmt.Errorf("failed to read session: %w", err)
	}

	if loggedIn {
		return core.MenuView{
			Text: "<b>GitHub account</b>\n\nYou are logged in.",
			Buttons: [][]core.Button{
				{{Text: "Log out", Action: ActionLogout}},
			},
		}, nil
	}

	if m.exchanger == nil {
		return core.MenuView{Text: "<b>GitHub account</b>\n\nGitHub login is not configured on this bot."}, nil
	}

	url, err := m.exchanger.AuthURL(req.UserID, req.MessageID)
	if err != nil {
		return core.MenuView{}, fmt.Errorf("failed to build login url: %w", err)
	}

	return core.MenuView{
		Text: "<b>GitHub account</b>\n\nLog in to subscribe chats to your repositories.",
		Buttons: [][]core.Button{
			{{Text: "Log in with GitHub", URL: url}},
		},
	}, nil
}

func (m *Login) HandleAction(ctx context.Context, req core.MenuRequest, action string) error {
	switch action {
	case ActionLogout:
		if err := m.sessions.Delete(ctx, req.UserID, core.SessionAccessToken); err != nil {
			return fmt.Errorf("failed to delete access token: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}
