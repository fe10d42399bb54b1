package model

import "strconv"

// LiveStatus is the observed live state of a streamer's room.
type LiveStatus int

const (
	Offline LiveStatus = iota
	Live
)

func (s LiveStatus) String() string {
	if s == Live {
		return "LIVE"
	}
	return "OFFLINE"
}

// RoomInfo is one entry of the batch status response, keyed by streamer UID.
type RoomInfo struct {
	Title          string `json:"title"`
	CoverURL       string `json:"cover_from_user"`
	LiveTime       int64  `json:"live_time"`
	LiveStatus     int    `json:"live_status"`
	Name           string `json:"uname"`
	RoomID         int64  `json:"room_id"`
	AreaName       string `json:"area_v2_name"`
	ParentAreaName string `json:"area_v2_parent_name"`
	UID            int64  `json:"uid"`
}

// IsLive reports whether the room is broadcasting (live_status == 1).
func (r RoomInfo) IsLive() bool {
	return r.LiveStatus == 1
}

// EntityID is the streamer UID in the string form used as a map key everywhere.
func (r RoomInfo) EntityID() string {
	return strconv.FormatInt(r.UID, 10)
}

// State projects the observation onto the persisted room state.
func (r RoomInfo) State() RoomState {
	status := Offline
	if r.IsLive() {
		status = Live
	}
	return RoomState{
		Title:              r.Title,
		CoverURL:           r.CoverURL,
		LiveStartTimestamp: r.LiveTime,
		LiveStatus:         status,
		AreaLabel:          r.AreaName,
		ParentAreaLabel:    r.ParentAreaName,
	}
}

// RoomState is the last observed state of a streamer, the diff baseline for the next poll.
// LiveStartTimestamp is only meaningful within one live session.
type RoomState struct {
	Title              string     `json:"title"`
	CoverURL           string     `json:"cover"`
	LiveStartTimestamp int64      `json:"live_time"`
	LiveStatus         LiveStatus `json:"live_status"`
	AreaLabel          string     `json:"area,omitempty"`
	ParentAreaLabel    string     `json:"parent_area,omitempty"`
}

// Baseline returns the zero state assumed for a streamer seen for the first time,
// keeping the title so the first sighting does not look like a title change.
func Baseline(title string) RoomState {
	return RoomState{Title: title, LiveStatus: Offline}
}
