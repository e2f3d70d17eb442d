package core

import "context"

// Sender delivers Telegram-HTML text to a chat.
type Sender interface {
	SendHTML(ctx context.Context, chatID int64, text string) error
}

// MenuEditor replaces the content of an existing bot message with a menu.
type MenuEditor interface {
	EditMenu(ctx context.Context, chatID int64, messageID int, view MenuView) error
}

// Button is a single inline keyboard button. Exactly one of Menu, Back,
// Action or URL is set.
type Button struct {
	Text   string
	Menu   string // open a sub-menu by name
	Back   bool   // pop the menu stack
	Action string // menu-specific action
	URL    string
}

// MenuView is a rendered menu ready to be shown.
type MenuView struct {
	Text    string
	Buttons [][]Button
}

// MenuRequest carries what a menu needs to render itself for a user.
type MenuRequest struct {
	UserID    int64
	MessageID int
}

// Menu is a named screen of the bot's settings.
type Menu interface {
	Name() string
	Render(ctx context.Context, req MenuRequest) (MenuView, error)
}

// ActionMenu is a Menu that reacts to its own buttons.
type ActionMenu interface {
	Menu
	HandleAction(ctx context.Context, req MenuRequest, action string) error
}
