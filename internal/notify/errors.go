package notify

import "errors"

var (
	ErrUnknownConfigKey = errors.New("unknown notify config key")
)
