package discord

import "errors"

var (
	errWebhookRequired = errors.New("discord: webhook url is required")
	errInvalidWebhook  = errors.New("discord: webhook URL must be .../webhooks/{id}/{token}")
)
