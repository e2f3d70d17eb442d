package github

import (
	"context"
	"errors"
	"iter"
	"sync"

	"github.com/sandevgo/hubgram/internal/core"
)

type fakeRenderer struct {
	mu    sync.Mutex
	calls []string
	html  string
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, markdown, repo string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, repo+":"+markdown)
	return f.html, f.err
}

type fakeChats struct {
	chats []core.Chat
	err   error
}

func (f *fakeChats) Chats(context.Context) iter.Seq2[core.Chat, error] {
	return func(yield func(core.Chat, error) bool) {
		for _, c := range f.chats {
			if !yield(c, nil) {
				return
			}
		}
		if f.err != nil {
			yield(core.Chat{}, f.err)
		}
	}
}

func (f *fakeChats) GetChat(_ context.Context, chatID int64) (core.Chat, error) {
	for _, c := range f.chats {
		if c.ID == chatID {
			return c, nil
		}
	}
	return core.Chat{ID: chatID}, nil
}

func (f *fakeChats) Subscribe(context.Context, int64, core.Repository) error { return nil }
func (f *fakeChats) Unsubscribe(context.Context, int64, int64) error        { return nil }

var errBlocked = errors.New("bot was blocked by the user")

type fakeSender struct {
	mu       sync.Mutex
	attempts []int64
	texts    map[int64]string
	failFor  map[int64]bool
}

func newFakeSender(failFor ...int64) *fakeSender {
	s := &fakeSender{texts: make(map[int64]string), failFor: make(map[int64]bool)}
	for _, id := range failFor {
		s.failFor[id] = true
	}
	return s
}

func (f *fakeSender) SendHTML(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, chatID)
	if f.failFor[chatID] {
		return errBlocked
	}
	f.texts[chatID] = text
	return nil
}

type fakeSessions struct {
	mu     sync.Mutex
	data   map[int64]map[string]string
	stacks map[int64][]string
	setErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{data: make(map[int64]map[string]string), stacks: make(map[int64][]string)}
}

func (f *fakeSessions) Get(_ context.Context, userID int64, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[userID][key]
	return v, ok, nil
}

func (f *fakeSessions) Set(_ context.Context, userID int64, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	if f.data[userID] == nil {
		f.data[userID] = make(map[string]string)
	}
	f.data[userID][key] = value
	return nil
}

func (f *fakeSessions) Delete(_ context.Context, userID int64, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data[userID], key)
	return nil
}

func (f *fakeSessions) MenuStack(_ context.Context, userID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stacks[userID], nil
}

func (f *fakeSessions) SetMenuStack(_ context.Context, userID int64, stack []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stacks[userID] = stack
	return nil
}
