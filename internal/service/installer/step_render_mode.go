package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/hubgram/internal/config"
)

type renderChoice struct {
	mode  string
	title string
}

// RenderModeStep selects where issue bodies are rendered
type RenderModeStep struct {
	choices []renderChoice
	cursor  int
}

func NewRenderModeStep() Step {
	return &RenderModeStep{
		choices: []renderChoice{
			{config.RenderModeAPI, "GitHub API (exact GitHub rendering)"},
			{config.RenderModeLocal, "Local (no API calls)"},
		},
	}
}

func (s *RenderModeStep) Init() tea.Cmd {
	return nil
}

func (s *RenderModeStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.Env.RenderMode = s.choices[s.cursor].mode
			return nil, nil
		}
	}
	return s, nil
}

func (s *RenderModeStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString("How should issue bodies be rendered?\n\n")
	for i, choice := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", choice.title)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", choice.title)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
