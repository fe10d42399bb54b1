package alert

import "time"

// GroupBannedInput describes an automatic group ban.
type GroupBannedInput struct {
	GroupID    string
	Violations int
	BannedAt   time.Time
}

// PollFailureInput describes a poll cycle that could not fetch room status.
type PollFailureInput struct {
	Reason   string // e.g. "fetch", "api"
	Err      error
	Entities int
	At       time.Time
}
