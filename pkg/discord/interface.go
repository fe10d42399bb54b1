package discord

import "context"

// IDiscord posts operator-facing messages to a Discord webhook.
type IDiscord interface {
	SendMessage(ctx context.Context, content string) error
	SendEmbed(ctx context.Context, options MessageOptions) error
	SendWarning(ctx context.Context, title, description string) error
	ReportBug(ctx context.Context, message string) error
	Close() error
}
