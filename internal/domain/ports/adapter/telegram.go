// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// Command is an inbound bot command together with the chat it came from.
type Command struct {
	Name      string   // without the leading slash or @botname suffix
	Args      []string // tokens after the command, may be empty
	ChatID    int64
	UserID    int64
	Username  string
	FirstName string
}

// Reply is plain text sent back to the originating chat.
type Reply struct {
	Text string
}

// CommandHandler handles one command invocation. A nil reply means nothing is sent.
type CommandHandler func(ctx context.Context, cmd Command) (*Reply, error)

// CommandRegistrar binds handlers to command names.
type CommandRegistrar interface {
	Handle(name string, h CommandHandler)
}
