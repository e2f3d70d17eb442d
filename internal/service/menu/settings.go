package menu

import (
	"context"
	"fmt"

	"github.com/sandevgo/hubgram/internal/core"
)

type Settings struct {
	sessions core.SessionRepository
}

func NewSettings(sessions core.SessionRepository) *Settings {
	return &Settings{sessions: sessions}
}

func (m *Settings) Name() string {
	return SettingsMenu
}

func (m *Settings) Render(ctx context.Context, req core.MenuRequest) (core.MenuView, error) {
	_, loggedIn, err := m.sessions.Get(ctx, req.UserID, core.SessionAccessToken)
	if err != nil {
		return core.MenuView{}, fmt.Errorf("failed to read session: %w", err)
	}

	status := "not connected"
	if loggedIn {
		status = "connected"
	}

	return core.MenuView{
		Text: fmt.Sprintf("<b>Settings</b>\n\nGitHub account: %s", status),
		Buttons: [][]core.Button{
			{{Text: "GitHub account", Menu: LoginMenu}},
		},
	}, nil
}
