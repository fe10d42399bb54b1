package moderation

import (
	"context"

	"livenotify-srv/pkg/onebot"
)

// UseCase escalates content violations into member and group bans.
type UseCase interface {
	// Load restores the violation counters.
	Load(ctx context.Context) error
	// RecordViolation blacklists the member (administrators excepted) and counts
	// one violation against the group, banning it at the threshold.
	RecordViolation(ctx context.Context, v Violation) (RecordResult, error)
	// CheckMessage records a violation when an inbound group message is
	// sensitive. Banned members and groups that are banned or have the bot
	// switched off are left alone.
	CheckMessage(ctx context.Context, msg InboundMessage) (bool, error)
	// UnbanGroup lifts a group ban and resets its counter.
	UnbanGroup(ctx context.Context, groupID string) error
	Count(groupID string) int
	Counts() map[string]int
}

// PermissionStore is the part of the permission lists moderation acts on.
type PermissionStore interface {
	IsAdmin(member string) bool
	IsMemberBanned(member string) bool
	IsGroupBanned(group string) bool
	IsGroupDisabled(group string) bool
	BanMember(ctx context.Context, members ...string) ([]string, error)
	BanGroup(ctx context.Context, group string) (bool, error)
	UnbanGroup(ctx context.Context, group string) error
}

// SessionProvider hands out the bot session used for the ban notice.
type SessionProvider interface {
	Session(ctx context.Context) (onebot.Sender, error)
}
