package roomstate

import "errors"

var (
	ErrNotSensitive = errors.New("streamer is not marked sensitive")
)
