package discord

import "time"

const (
	webhookPrefix = "https://discord.com/api/webhooks/"

	ColorInfo    = 3447003
	ColorSuccess = 3066993
	ColorWarning = 16776960
	ColorError   = 15158332

	MaxMessageLength  = 2000
	MaxEmbedLength    = 6000
	MaxTitleLen       = 256
	MaxDescriptionLen = 4096
	MaxFieldValueLen  = 1024
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultRetryCount = 3
	DefaultRetryDelay = 1 * time.Second
)

const (
	DefaultUsername = "LiveNotify"
	UserAgent       = "livenotify-srv/1.0"
	ReportBugTitle  = "LiveNotify Service Error Report"
)
