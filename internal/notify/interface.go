// Package notify fans a notification out to the groups following a streamer.
package notify

import (
	"livenotify-srv/internal/model"
	"livenotify-srv/pkg/onebot"
)

// Recipients lists the groups following a streamer.
type Recipients interface {
	GroupsFor(entityID string) []string
}

// Eligibility decides whether a group may receive a feature's pushes.
type Eligibility interface {
	CanNotify(group, feature string) bool
}

// Builder renders the message for one group under its config. A nil message
// means the group does not want this notification.
type Builder func(cfg model.GroupNotifyConfig) onebot.Message
