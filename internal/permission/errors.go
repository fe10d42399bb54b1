package permission

import "errors"

var (
	ErrAdminImmune     = errors.New("bot administrators cannot be banned")
	ErrUnknownSwitch   = errors.New("unknown feature switch operation")
	ErrEmptyIdentifier = errors.New("empty identifier")
)
