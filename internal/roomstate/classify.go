package roomstate

import "livenotify-srv/internal/model"

// Change is the outcome of comparing a streamer's previous state with a new observation.
// Start/stop and title change are independent: one poll can produce both.
type Change struct {
	// Started is a new live session: live now and a start timestamp newer than the stored one.
	Started bool
	// Restarted is a Started whose previous state was already live, i.e. the
	// stream went down and back up between two polls.
	Restarted bool
	// Stopped is the end of a known session.
	Stopped bool
	// SessionStart is the start timestamp of the session that just stopped.
	SessionStart int64

	TitleChanged bool
	OldTitle     string
	// WhileLive tells which title-change toggle applies.
	WhileLive bool
}

// None reports whether nothing noteworthy happened.
func (c Change) None() bool {
	return !c.Started && !c.Stopped && !c.TitleChanged
}

// Classify compares prev with next. It is pure.
func Classify(prev, next model.RoomState) Change {
	var c Change

	switch {
	case next.LiveStatus == model.Live && next.LiveStartTimestamp > prev.LiveStartTimestamp:
		c.Started = true
		c.Restarted = prev.LiveStatus == model.Live
	case next.LiveStatus != model.Live && prev.LiveStartTimestamp > 1:
		c.Stopped = true
		c.SessionStart = prev.LiveStartTimestamp
	}

	if next.Title != prev.Title {
		c.TitleChanged = true
		c.OldTitle = prev.Title
		c.WhileLive = next.LiveStatus == model.Live
	}
	return c
}
