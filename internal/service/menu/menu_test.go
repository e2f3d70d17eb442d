package menu

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/hubgram/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSessions struct {
	mu     sync.Mutex
	data   map[int64]map[string]string
	stacks map[int64][]string
}

func newMemSessions() *memSessions {
	return &memSessions{data: make(map[int64]map[string]string), stacks: make(map[int64][]string)}
}

func (s *memSessions) Get(_ context.Context, userID int64, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[userID][key]
	return v, ok, nil
}

func (s *memSessions) Set(_ context.Context, userID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[userID] == nil {
		s.data[userID] = make(map[string]string)
	}
	s.data[userID][key] = value
	return nil
}

func (s *memSessions) Delete(_ context.Context, userID int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[userID], key)
	return nil
}

func (s *memSessions) MenuStack(_ context.Context, userID int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stacks[userID]...), nil
}

func (s *memSessions) SetMenuStack(_ context.Context, userID int64, stack []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stacks[userID] = append([]string(nil), stack...)
	return nil
}

type edit struct {
	chatID    int64
	messageID int
	view      core.MenuView
}

type fakeEditor struct {
	edits []edit
	err   error
}

func (f *fakeEditor) EditMenu(_ context.Context, chatID int64, messageID int, view core.MenuView) error {
	f.edits = append(f.edits, edit{chatID, messageID, view})
	return f.err
}

func (f *fakeEditor) last() edit {
	return f.edits[len(f.edits)-1]
}

type fakeExchanger struct {
	err error
}

func (f *fakeExchanger) AuthURL(userID int64, messageID int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://github.com/login/oauth/authorize?state=s", nil
}

func (f *fakeExchanger) Exchange(context.Context, string, string) (string, error) {
	return "", errors.New("not used")
}

func newTestNavigator(exchanger core.TokenExchanger) (*Navigator, *memSessions, *fakeEditor) {
	sessions := newMemSessions()
	editor := &fakeEditor{}
	registry := NewRegistry(NewSettings(sessions), NewLogin(sessions, exchanger))
	return NewNavigator(registry, sessions, editor, SettingsMenu), sessions, editor
}

func hasButton(view core.MenuView, match func(core.Button) bool) bool {
	for _, row := range view.Buttons {
		for _, b := range row {
			if match(b) {
				return true
			}
		}
	}
	return false
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(NewSettings(newMemSessions()))

	m, err := r.Get(SettingsMenu)
	require.NoError(t, err)
	assert.Equal(t, SettingsMenu, m.Name())

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, core.ErrUnknownMenu)
}

func TestNavigator_Start(t *testing.T) {
	nav, sessions, editor := newTestNavigator(&fakeExchanger{})
	ctx := context.Background()

	view, err := nav.Start(ctx, 42)
	require.NoError(t, err)
	assert.Contains(t, view.Text, "not connected")
	assert.True(t, hasButton(view, func(b core.Button) bool { return b.Menu == LoginMenu }))
	assert.False(t, hasButton(view, func(b core.Button) bool { return b.Back }))
	assert.Empty(t, editor.edits)

	stack, _ := sessions.MenuStack(ctx, 42)
	assert.Equal(t, []string{SettingsMenu}, stack)
}

func TestNavigator_OpenAndBack(t *testing.T) {
	nav, sessions, editor := newTestNavigator(&fakeExchanger{})
	ctx := context.Background()

	_, err := nav.Start(ctx, 42)
	require.NoError(t, err)

	require.NoError(t, nav.Open(ctx, 42, 7, LoginMenu))
	e := editor.last()
	assert.Equal(t, int64(42), e.chatID)
	assert.Equal(t, 7, e.messageID)
	assert.True(t, hasButton(e.view, func(b core.Button) bool { return b.URL != "" }))
	assert.True(t, hasButton(e.view, func(b core.Button) bool { return b.Back }))

	stack, _ := sessions.MenuStack(ctx, 42)
	assert.Equal(t, []string{SettingsMenu, LoginMenu}, stack)

	require.NoError(t, nav.Back(ctx, 42, 7))
	stack, _ = sessions.MenuStack(ctx, 42)
	assert.Equal(t, []string{SettingsMenu}, stack)
	assert.Contains(t, editor.last().view.Text, "Settings")

	// The root stays put.
	require.NoError(t, nav.Back(ctx, 42, 7))
	stack, _ = sessions.MenuStack(ctx, 42)
	assert.Equal(t, []string{SettingsMenu}, stack)
}

func TestNavigator_OpenUnknown(t *testing.T) {
	nav, _, editor := newTestNavigator(&fakeExchanger{})

	err := nav.Open(context.Background(), 1, 1, "nope")
	assert.ErrorIs(t, err, core.ErrUnknownMenu)
	assert.Empty(t, editor.edits)
}

func TestNavigator_ShowAfterLogin(t *testing.T) {
	nav, sessions, editor := newTestNavigator(&fakeExchanger{})
	ctx := context.Background()
	require.NoError(t, sessions.Set(ctx, 42, core.SessionAccessToken, "gho_x"))

	require.NoError(t, nav.Show(ctx, 42, 9, []string{SettingsMenu, LoginMenu}, nil))

	e := editor.last()
	assert.Equal(t, 9, e.messageID)
	assert.Contains(t, e.view.Text, "logged in")
	assert.True(t, hasButton(e.view, func(b core.Button) bool { return b.Action == ActionLogout }))
}

func TestNavigator_Logout(t *testing.T) {
	nav, sessions, editor := newTestNavigator(&fakeExchanger{})
	ctx := context.Background()
	require.NoError(t, sessions.Set(ctx, 42, core.SessionAccessToken, "gho_x"))
	require.NoError(t, nav.Show(ctx, 42, 9, []string{SettingsMenu, LoginMenu}, nil))

	require.NoError(t, nav.Action(ctx, 42, 9, ActionLogout))

	_, ok, _ := sessions.Get(ctx, 42, core.SessionAccessToken)
	assert.False(t, ok)
	assert.True(t, hasButton(editor.last().view, func(b core.Button) bool { return b.URL != "" }))
}

func TestNavigator_ShowBeforeHoldsUserLock(t *testing.T) {
	nav, sessions, editor := newTestNavigator(&fakeExchanger{})
	ctx := context.Background()
	require.NoError(t, nav.Show(ctx, 42, 9, []string{SettingsMenu, LoginMenu}, nil))

	started := make(chan struct{})
	release := make(chan struct{})
	showDone := make(chan error, 1)
	go func() {
		showDone <- nav.Show(ctx, 42, 9, []string{SettingsMenu, LoginMenu}, func(ctx context.Context) error {
			close(started)
			<-release
			return sessions.Set(ctx, 42, core.SessionAccessToken, "gho_new")
		})
	}()
	<-started

	actionDone := make(chan error, 1)
	go func() { actionDone <- nav.Action(ctx, 42, 9, ActionLogout) }()

	select {
	case <-actionDone:
		t.Fatal("logout ran while a login held the user's lock")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-showDone)
	require.NoError(t, <-actionDone)

	// Logout ran after the login finished, so it removed the new token.
	_, ok, _ := sessions.Get(ctx, 42, core.SessionAccessToken)
	assert.False(t, ok)
	assert.True(t, hasButton(editor.last().view, func(b core.Button) bool { return b.URL != "" }))
}

func TestNavigator_ShowBeforeError(t *testing.T) {
	nav, _, editor := newTestNavigator(&fakeExchanger{})
	errStore := errors.New("readonly database")

	err := nav.Show(context.Background(), 1, 1, nil, func(context.Context) error { return errStore })
	assert.ErrorIs(t, err, errStore)
	assert.Empty(t, editor.edits)
}

func TestNavigator_ActionOnPlainMenu(t *testing.T) {
	nav, _, _ := newTestNavigator(&fakeExchanger{})
	ctx := context.Background()
	_, err := nav.Start(ctx, 1)
	require.NoError(t, err)

	assert.Error(t, nav.Action(ctx, 1, 1, ActionLogout))
}

func TestLogin_NotConfigured(t *testing.T) {
	m := NewLogin(newMemSessions(), nil)

	view, err := m.Render(context.Background(), core.MenuRequest{UserID: 1, MessageID: 2})
	require.NoError(t, err)
	assert.Contains(t, view.Text, "not configured")
	assert.Empty(t, view.Buttons)
}

func TestLogin_AuthURLError(t *testing.T) {
	m := NewLogin(newMemSessions(), &fakeExchanger{err: errors.New("no secret")})

	_, err := m.Render(context.Background(), core.MenuRequest{UserID: 1})
	assert.Error(t, err)
}

func TestNavigator_EditFailure(t *testing.T) {
	nav, _, editor := newTestNavigator(&fakeExchanger{})
	editor.err = errors.New("message to edit not found")

	err := nav.Show(context.Background(), 1, 1, nil, nil)
	assert.ErrorIs(t, err, editor.err)
}
