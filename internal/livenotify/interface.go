// Package livenotify turns Bilibili room observations into group notifications
// and exposes the subscription commands.
package livenotify

import (
	"context"

	"livenotify-srv/internal/model"
	"livenotify-srv/pkg/onebot"
)

// UseCase is the live notification engine.
type UseCase interface {
	// Load restores subscriptions, room states and group configs.
	Load(ctx context.Context) error
	// Persist writes the room states, names and redactions that changed.
	Persist(ctx context.Context) error

	// SubscribedEntities returns the streamers to poll.
	SubscribedEntities() []string
	// HandleRoom diffs one observation against the stored state, notifies the
	// followers and stores the observation.
	HandleRoom(ctx context.Context, sender onebot.Sender, info model.RoomInfo) RoomEvent

	Subscribe(ctx context.Context, group string, uids []string) (Reply, error)
	Unsubscribe(ctx context.Context, group string, uids []string) (Reply, error)
	SetGroupConfig(ctx context.Context, group, key, value string) (Reply, error)
	GroupConfig(ctx context.Context, group string) (Reply, error)
	ShowGroupSubscriptions(ctx context.Context, group string) (Reply, error)
	ShowEntitySubscriptions(ctx context.Context, uid string) (Reply, error)
	ClearGroup(ctx context.Context, group string) (Reply, error)
	ClearEntity(ctx context.Context, uid string) (Reply, error)
	// RemoveGroup forgets everything about a group the bot has left.
	RemoveGroup(ctx context.Context, group string) error

	SensitiveEntities() []string
	ClearSensitive(ctx context.Context, uid string) error
}
