package installer

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/hubgram/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeInto(t *testing.T, step Step, state *InstallState, text string) Step {
	t.Helper()
	for _, r := range text {
		next, _ := step.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}, state, 80, 24)
		require.NotNil(t, next)
		step = next
	}
	next, _ := step.Update(tea.KeyMsg{Type: tea.KeyEnter}, state, 80, 24)
	return next
}

func TestTelegramTokenStep(t *testing.T) {
	state := NewInstallState()

	step := typeInto(t, NewTelegramTokenStep(), state, "nocolon")
	require.NotNil(t, step)
	assert.Empty(t, state.Env.TelegramToken)
	assert.Contains(t, step.View(state), "123456789:ABCDEF")

	step = typeInto(t, NewTelegramTokenStep(), state, "123:abc")
	assert.Nil(t, step)
	assert.Equal(t, "123:abc", state.Env.TelegramToken)
}

func TestInputStep_RequiredAndOptional(t *testing.T) {
	state := NewInstallState()

	next, _ := NewTelegramTokenStep().Update(tea.KeyMsg{Type: tea.KeyEnter}, state, 80, 24)
	assert.NotNil(t, next)

	next, _ = NewWebhookSecretStep().Update(tea.KeyMsg{Type: tea.KeyEnter}, state, 80, 24)
	assert.Nil(t, next)
	assert.Empty(t, state.Env.WebhookSecret)
}

func TestPublicURLStep(t *testing.T) {
	state := NewInstallState()

	assert.NotNil(t, typeInto(t, NewPublicURLStep(), state, "example.com"))
	assert.Nil(t, typeInto(t, NewPublicURLStep(), state, "https://example.com/"))
	assert.Equal(t, "https://example.com", state.Env.PublicURL)
}

func TestRenderModeStep(t *testing.T) {
	state := NewInstallState()
	step := NewRenderModeStep()

	step, _ = step.Update(tea.KeyMsg{Type: tea.KeyDown}, state, 80, 24)
	next, _ := step.Update(tea.KeyMsg{Type: tea.KeyEnter}, state, 80, 24)

	assert.Nil(t, next)
	assert.Equal(t, config.RenderModeLocal, state.Env.RenderMode)
}

func TestFinalize(t *testing.T) {
	e := &EnvFile{GitHubClientID: "Iv1.x"}
	finalize(e)
	assert.Equal(t, config.RenderModeAPI, e.RenderMode)
	assert.Len(t, e.StateSecret, 64)

	plain := &EnvFile{RenderMode: config.RenderModeLocal}
	finalize(plain)
	assert.Empty(t, plain.StateSecret)
	assert.Equal(t, config.RenderModeLocal, plain.RenderMode)
}

func TestSaveEnv(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runtime")
	e := &EnvFile{TelegramToken: "123:abc", RenderMode: "local", HTTPAddr: ":9090"}

	path, err := saveEnv(dir, e)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "HUBGRAM_TELEGRAM_TOKEN=123:abc\nHUBGRAM_GITHUB_RENDER_MODE=local\nHUBGRAM_HTTP_ADDR=:9090\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = saveEnv(dir, e)
	assert.ErrorContains(t, err, "already exists")
}
