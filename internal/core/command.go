package core

import "context"

type CommandRequest struct {
	ChatID int64
	UserID int64
	Args   []string
}

type CmdRouter interface {
	Execute(ctx context.Context, req CommandRequest, input string) (string, bool)
	ListCommands() []Command
}

// Command output is Markdown; transports convert it for their channel.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, req CommandRequest) (string, error)
}
