package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// InputStep collects a single value. Optional steps accept an empty value.
type InputStep struct {
	input    textinput.Model
	title    string
	optional bool
	validate func(string) error
	apply    func(state *InstallState, value string)
	err      error
}

func newInputStep(title, placeholder string, secret, optional bool, apply func(*InstallState, string)) *InputStep {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}

	return &InputStep{
		input:    ti,
		title:    title,
		optional: optional,
		apply:    apply,
	}
}

func NewTelegramTokenStep() Step {
	s := newInputStep("Telegram Bot Token", "123456789:ABCDEF...", true, false,
		func(st *InstallState, v string) { st.Env.TelegramToken = v })
	s.validate = func(v string) error {
		if !strings.Contains(v, ":") {
			return fmt.Errorf("a bot token looks like 123456789:ABCDEF")
		}
		return nil
	}
	return s
}

func NewGitHubClientIDStep() Step {
	return newInputStep("GitHub OAuth App Client ID", "Iv1.0123456789abcdef", false, true,
		func(st *InstallState, v string) { st.Env.GitHubClientID = v })
}

func NewGitHubClientSecretStep() Step {
	return newInputStep("GitHub OAuth App Client Secret", "", true, true,
		func(st *InstallState, v string) { st.Env.GitHubClientSecret = v })
}

func NewWebhookSecretStep() Step {
	return newInputStep("GitHub Webhook Secret", "", true, true,
		func(st *InstallState, v string) { st.Env.WebhookSecret = v })
}

func NewGitHubTokenStep() Step {
	return newInputStep("GitHub API Token for rendering", "ghp_...", true, true,
		func(st *InstallState, v string) { st.Env.GitHubToken = v })
}

func NewPublicURLStep() Step {
	s := newInputStep("Public URL of this server", "https://hubgram.example.com", false, true,
		func(st *InstallState, v string) { st.Env.PublicURL = strings.TrimSuffix(v, "/") })
	s.validate = func(v string) error {
		if !strings.HasPrefix(v, "https://") && !strings.HasPrefix(v, "http://") {
			return fmt.Errorf("the URL must start with http:// or https://")
		}
		return nil
	}
	return s
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" {
			if s.optional {
				return nil, nil
			}
			s.err = fmt.Errorf("a value is required")
			return s, nil
		}
		if s.validate != nil {
			if err := s.validate(val); err != nil {
				s.err = err
				return s, nil
			}
		}
		s.apply(state, val)
		return nil, nil
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	hint := ""
	if s.optional {
		hint = " (optional - press Enter to skip)"
	}

	view := fmt.Sprintf("Enter your %s%s:\n\n%s\n\n", s.title, hint, s.input.View())
	if s.err != nil {
		view += errorStyle.Render(s.err.Error()) + "\n\n"
	}
	return view + "(press enter to confirm)\n"
}
