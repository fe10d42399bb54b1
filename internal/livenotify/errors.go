package livenotify

import "errors"

var (
	ErrEmptyGroup          = errors.New("group id is required")
	ErrNoUIDs              = errors.New("no streamer uid recognized")
	ErrUnknownConfigKey    = errors.New("unknown config item")
	ErrUnknownConfigValue  = errors.New("unknown switch value")
	ErrStreamerNotRedacted = errors.New("streamer is not redacted")
)
