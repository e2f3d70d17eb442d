package installer

import (
	"crypto/rand"
	"encoding/hex"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/hubgram/internal/config"
)

// FinalizationStep computes derived values
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	finalize(&state.Env)
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

func finalize(e *EnvFile) {
	if e.RenderMode == "" {
		e.RenderMode = config.RenderModeAPI
	}

	// State tokens get their own key when OAuth is configured
	if e.StateSecret == "" && e.GitHubClientID != "" {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		e.StateSecret = hex.EncodeToString(buf)
	}
}
