package menu

import (
	"context"
	"fmt"

	"github.com/sandevgo/hubgram/internal/core"
	"github.com/sandevgo/hubgram/pkg/log"
	"github.com/sandevgo/hubgram/pkg/syncutil"
)

// Navigator keeps a per-user stack of open menus and redraws the top one in
// place. Menus live in private chats, so the chat id is the user id.
type Navigator struct {
	registry *Registry
	sessions core.SessionRepository
	editor   core.MenuEditor
	root     string
	locks    syncutil.KeyedMutex[int64]
}

func NewNavigator(registry *Registry, sessions core.SessionRepository, editor core.MenuEditor, root string) *Navigator {
	return &Navigator{
		registry: registry,
		sessions: sessions,
		editor:   editor,
		root:     root,
	}
}

// Start resets the user's stack to the root menu and returns its view for a
// new message.
func (n *Navigator) Start(ctx context.Context, userID int64) (core.MenuView, error) {
	unlock := n.locks.Lock(userID)
	defer unlock()

	if err := n.sessions.SetMenuStack(ctx, userID, []string{n.root}); err != nil {
		return core.MenuView{}, fmt.Errorf("failed to reset menu stack: %w", err)
	}
	return n.render(ctx, n.root, core.MenuRequest{UserID: userID})
}

// Show replaces the user's stack and draws its top menu in messageID. A
// non-nil before runs first while the user's lock is held, and its error
// aborts the redraw.
func (n *Navigator) Show(
	ctx context.Context,
	userID int64,
	messageID int,
	stack []string,
	before func(context.Context) error,
) error {
	unlock := n.locks.Lock(userID)
	defer unlock()

	if before != nil {
		if err := before(ctx); err != nil {
			return err
		}
	}

	if len(stack) == 0 {
		stack = []string{n.root}
	}
	return n.draw(ctx, userID, messageID, stack)
}

// Open pushes name onto the user's stack.
func (n *Navigator) Open(ctx context.Context, userID int64, messageID int, name string) error {
	unlock := n.locks.Lock(userID)
	defer unlock()

	if _, err := n.registry.Get(name); err != nil {
		return err
	}

	stack, err := n.stack(ctx, userID)
	if err != nil {
		return err
	}
	return n.draw(ctx, userID, messageID, append(stack, name))
}

// Back pops the top menu. The root menu is never popped.
func (n *Navigator) Back(ctx context.Context, userID int64, messageID int) error {
	unlock := n.locks.Lock(userID)
	defer unlock()

	stack, err := n.stack(ctx, userID)
	if err != nil {
		return err
	}
	if len(stack) > 1 {
		stack = stack[:len(stack)-1]
	}
	return n.draw(ctx, userID, messageID, stack)
}

// Action passes action to the top menu and redraws it.
func (n *Navigator) Action(ctx context.Context, userID int64, messageID int, action string) error {
	unlock := n.locks.Lock(userID)
	defer unlock()

	stack, err := n.stack(ctx, userID)
	if err != nil {
		return err
	}

	top := stack[len(stack)-1]
	m, err := n.registry.Get(top)
	if err != nil {
		return err
	}
	am, ok := m.(core.ActionMenu)
	if !ok {
		return fmt.Errorf("menu %q has no actions", top)
	}

	req := core.MenuRequest{UserID: userID, MessageID: messageID}
	if err := am.HandleAction(ctx, req, action); err != nil {
		return fmt.Errorf("menu %q action %q: %w", top, action, err)
	}
	return n.draw(ctx, userID, messageID, stack)
}

func (n *Navigator) stack(ctx context.Context, userID int64) ([]string, error) {
	stack, err := n.sessions.MenuStack(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu stack: %w", err)
	}
	if len(stack) == 0 {
		stack = []string{n.root}
	}
	return stack, nil
}

func (n *Navigator) draw(ctx context.Context, userID int64, messageID int, stack []string) error {
	top := stack[len(stack)-1]
	view, err := n.render(ctx, top, core.MenuRequest{UserID: userID, MessageID: messageID})
	if err != nil {
		return err
	}

	if err := n.sessions.SetMenuStack(ctx, userID, stack); err != nil {
		return fmt.Errorf("failed to save menu stack: %w", err)
	}

	if len(stack) > 1 {
		view.Buttons = append(view.Buttons, []core.Button{{Text: "« Back", Back: true}})
	}

	log.FromCtx(ctx).Debug().Int64("user_id", userID).Strs("stack", stack).Msg("drawing menu")

	if err := n.editor.EditMenu(ctx, userID, messageID, view); err != nil {
		return fmt.Errorf("failed to edit menu message: %w", err)
	}
	return nil
}

func (n *Navigator) render(ctx context.Context, name string, req core.MenuRequest) (core.MenuView, error) {
	m, err := n.registry.Get(name)
	if err != nil {
		return core.MenuView{}, err
	}
	view, err := m.Render(ctx, req)
	if err != nil {
		return core.MenuView{}, fmt.Errorf("failed to render menu %q: %w", name, err)
	}
	return view, nil
}
