package onebot

import "context"

// Sender delivers messages to groups.
type Sender interface {
	SendGroupMessage(ctx context.Context, groupID string, msg Message) error
}

// Client is a OneBot v11 forward websocket client that keeps its connection
// alive until Run returns.
type Client interface {
	Sender

	// Run connects and reconnects with backoff until ctx is done.
	Run(ctx context.Context) error
	// Session returns the client as a Sender when a connection is up, ErrNotConnected otherwise.
	Session(ctx context.Context) (Sender, error)
	Connected() bool
	// LoginInfo returns the account the bot runtime is logged in with.
	LoginInfo(ctx context.Context) (userID int64, nickname string, err error)
	// OnGroupMessage registers the handler for group message events.
	OnGroupMessage(h GroupMessageHandler)
	// OnGroupKicked registers the handler for the bot being kicked out of a group.
	OnGroupKicked(h GroupKickedHandler)
	Close() error
}
