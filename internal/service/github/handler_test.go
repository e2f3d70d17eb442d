package github

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sandevgo/hubgram/internal/core"
	"github.com/sandevgo/hubgram/pkg/conv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloRepoID = 1296269

func subscribedChats() *fakeChats {
	return &fakeChats{chats: []core.Chat{
		{ID: 100, Repos: map[int64]string{helloRepoID: "octo/hello"}},
		{ID: 200, Repos: map[int64]string{7: "octo/other"}},
		{ID: 300, Repos: map[int64]string{7: "octo/other", helloRepoID: "octo/hello"}},
		{ID: 400},
	}}
}

func issuesEvent(body any) core.Event {
	return core.Event{
		Type: core.EventIssues,
		Payload: map[string]any{
			"action": "opened",
			"issue": map[string]any{
				"number":   float64(12),
				"title":    "Crash on <start>",
				"html_url": "https://github.com/octo/hello/issues/12",
				"body":     body,
				"user":     map[string]any{"login": "alice"},
			},
			"repository": map[string]any{
				"id":        float64(helloRepoID),
				"full_name": "octo/hello",
			},
		},
	}
}

func newTestHandler(renderer *fakeRenderer, chats *fakeChats, sender *fakeSender, m *Metrics) *Handler {
	return NewHandler(renderer, conv.NewGitHubPolicy(), chats, NewDispatcher(sender, 2, m), m)
}

func sortedAttempts(s *fakeSender) []int64 {
	out := append([]int64(nil), s.attempts...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestHandler_Issues(t *testing.T) {
	renderer := &fakeRenderer{html: "<blockquote><p>steps</p></blockquote><ul><li>one</li></ul><script>x</script>"}
	sender := newFakeSender()
	h := newTestHandler(renderer, subscribedChats(), sender, nil)

	err := h.HandleEvent(context.Background(), issuesEvent("> steps\n- one"))
	require.NoError(t, err)

	assert.Equal(t, []string{"octo/hello:> steps\n- one"}, renderer.calls)
	assert.Equal(t, []int64{100, 300}, sortedAttempts(sender))

	want := `<b>octo/hello</b>: issue <a href="https://github.com/octo/hello/issues/12">#12 Crash on &lt;start></a> opened by alice` +
		"\n\n> steps- one"
	assert.Equal(t, want, sender.texts[100])
	assert.Equal(t, want, sender.texts[300])
}

func TestHandler_Issues_EmptyBodySendsHeaderOnly(t *testing.T) {
	renderer := &fakeRenderer{}
	sender := newFakeSender()
	h := newTestHandler(renderer, subscribedChats(), sender, nil)

	require.NoError(t, h.HandleEvent(context.Background(), issuesEvent(nil)))

	assert.Empty(t, renderer.calls)
	assert.Len(t, sender.attempts, 2)
	assert.NotContains(t, sender.texts[100], "\n\n")
}

func TestHandler_Issues_RenderErrorAbortsSend(t *testing.T) {
	renderer := &fakeRenderer{err: errors.Join(core.ErrRender, errors.New("503"))}
	sender := newFakeSender()
	h := newTestHandler(renderer, subscribedChats(), sender, nil)

	err := h.HandleEvent(context.Background(), issuesEvent("body"))
	assert.ErrorIs(t, err, core.ErrRender)
	assert.Empty(t, sender.attempts)
}

func TestHandler_Issues_SendFailureDoesNotStopFanOut(t *testing.T) {
	chats := &fakeChats{}
	for id := int64(1); id <= 5; id++ {
		chats.chats = append(chats.chats, core.Chat{ID: id, Repos: map[int64]string{helloRepoID: "octo/hello"}})
	}
	sender := newFakeSender(2)
	h := newTestHandler(&fakeRenderer{html: "<p>hi</p>"}, chats, sender, nil)

	err := h.HandleEvent(context.Background(), issuesEvent("hi"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSend)
	assert.ErrorIs(t, err, errBlocked)

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, sortedAttempts(sender))
	assert.Len(t, sender.texts, 4)
}

func TestHandler_Issues_MalformedPayload(t *testing.T) {
	h := newTestHandler(&fakeRenderer{}, subscribedChats(), newFakeSender(), nil)
	ctx := context.Background()

	assert.Error(t, h.HandleEvent(ctx, core.Event{Type: core.EventIssues, Payload: map[string]any{}}))

	ev := issuesEvent("x")
	delete(ev.Payload, "repository")
	assert.Error(t, h.HandleEvent(ctx, ev))
}

func TestHandler_UnknownEvent(t *testing.T) {
	renderer := &fakeRenderer{}
	sender := newFakeSender()
	h := newTestHandler(renderer, subscribedChats(), sender, nil)

	err := h.HandleEvent(context.Background(), core.Event{
		Type:    "star",
		Payload: map[string]any{"action": "created"},
	})
	require.NoError(t, err)
	assert.Empty(t, renderer.calls)
	assert.Empty(t, sender.attempts)
}

func TestHandler_Ping(t *testing.T) {
	sender := newFakeSender()
	h := newTestHandler(&fakeRenderer{}, subscribedChats(), sender, nil)

	err := h.HandleEvent(context.Background(), core.Event{Type: core.EventPing, Payload: map[string]any{"zen": "Keep it simple."}})
	require.NoError(t, err)
	assert.Empty(t, sender.attempts)
}

func TestHandler_IssueComment(t *testing.T) {
	payload := func(action string) map[string]any {
		return map[string]any{
			"action":     action,
			"issue":      map[string]any{"number": float64(3), "title": "Bug", "html_url": "https://github.com/octo/hello/issues/3"},
			"comment":    map[string]any{"body": "me too", "user": map[string]any{"login": "bob"}},
			"repository": map[string]any{"id": float64(helloRepoID), "full_name": "octo/hello"},
		}
	}
	renderer := &fakeRenderer{html: "<p>me too</p>"}
	sender := newFakeSender()
	h := newTestHandler(renderer, subscribedChats(), sender, nil)
	ctx := context.Background()

	require.NoError(t, h.HandleEvent(ctx, core.Event{Type: core.EventIssueComment, Payload: payload("edited")}))
	assert.Empty(t, sender.attempts)

	require.NoError(t, h.HandleEvent(ctx, core.Event{Type: core.EventIssueComment, Payload: payload("created")}))
	assert.Len(t, sender.attempts, 2)
	assert.Contains(t, sender.texts[100], "bob commented on")
	assert.Contains(t, sender.texts[100], "\n\nme too")
}

func TestHandler_PullRequest(t *testing.T) {
	payload := func(action string) map[string]any {
		return map[string]any{
			"action": action,
			"pull_request": map[string]any{
				"number": float64(9), "title": "Add feature", "body": "**please**",
				"html_url": "https://github.com/octo/hello/pull/9",
				"user":     map[string]any{"login": "carol"},
			},
			"repository": map[string]any{"id": float64(helloRepoID), "full_name": "octo/hello"},
		}
	}
	renderer := &fakeRenderer{html: "<p><strong>please</strong></p>"}
	sender := newFakeSender()
	h := newTestHandler(renderer, subscribedChats(), sender, nil)
	ctx := context.Background()

	require.NoError(t, h.HandleEvent(ctx, core.Event{Type: core.EventPullRequest, Payload: payload("synchronize")}))
	assert.Empty(t, sender.attempts)

	require.NoError(t, h.HandleEvent(ctx, core.Event{Type: core.EventPullRequest, Payload: payload("opened")}))
	assert.Contains(t, sender.texts[300], "pull request")
	assert.Contains(t, sender.texts[300], "<strong>please</strong>")

	require.NoError(t, h.HandleEvent(ctx, core.Event{Type: core.EventPullRequestReview, Payload: payload("submitted")}))
	assert.Len(t, sender.attempts, 2)
}

func TestHandler_Metrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	h := newTestHandler(&fakeRenderer{html: "<p>x</p>"}, subscribedChats(), newFakeSender(300), m)
	ctx := context.Background()

	_ = h.HandleEvent(ctx, issuesEvent("x"))
	_ = h.HandleEvent(ctx, core.Event{Type: "star"})
	_ = h.HandleEvent(ctx, core.Event{Type: "x-forged-header-value"})
	_ = h.HandleEvent(ctx, core.Event{Type: "ping"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("issues", resultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("ping", resultOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues(eventUnknown, resultOK)))
	// Unrouted types never become label values.
	assert.Equal(t, 3, testutil.CollectAndCount(m.events))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messages.WithLabelValues(resultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messages.WithLabelValues(resultError)))
}

func TestSubscribedChats(t *testing.T) {
	ctx := context.Background()
	repo := core.Repository{ID: helloRepoID, FullName: "octo/hello"}

	var ids []int64
	for id, err := range SubscribedChats(ctx, subscribedChats(), repo) {
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Equal(t, []int64{100, 300}, ids)

	storeErr := errors.New("disk I/O error")
	failing := subscribedChats()
	failing.err = storeErr

	var gotErr error
	for _, err := range SubscribedChats(ctx, failing, repo) {
		if err != nil {
			gotErr = err
		}
	}
	assert.ErrorIs(t, gotErr, storeErr)
}

func TestDispatcher_StoreErrorIsReported(t *testing.T) {
	chats := subscribedChats()
	chats.err = errors.New("database is locked")
	sender := newFakeSender()

	d := NewDispatcher(sender, 4, nil)
	err := d.Broadcast(context.Background(), SubscribedChats(context.Background(), chats, core.Repository{ID: helloRepoID}), "x")

	assert.ErrorIs(t, err, chats.err)
	assert.Equal(t, []int64{100, 300}, sortedAttempts(sender))
}
