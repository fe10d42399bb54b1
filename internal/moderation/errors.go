package moderation

import "errors"

var (
	ErrEmptyViolation = errors.New("violation has neither member nor group")
)
