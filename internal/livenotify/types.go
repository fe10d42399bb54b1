package livenotify

import (
	"livenotify-srv/internal/model"
	"livenotify-srv/internal/notify"
	"livenotify-srv/internal/roomstate"
)

// Reply is the outcome of a command: the chat reply and the data behind it.
type Reply struct {
	Text string
	// OK is false when the command was rejected or had nothing to act on.
	OK     bool
	UIDs   []string
	Groups []string
	Config *model.GroupNotifyConfig
}

// RoomEvent is what HandleRoom did for one streamer.
type RoomEvent struct {
	EntityID string
	Change   roomstate.Change
	// Redacted is true when the streamer's name and title are withheld.
	Redacted bool

	Title *notify.Result
	Start *notify.Result
	Stop  *notify.Result
}
