package storage

import "errors"

var (
	ErrInvalidName = errors.New("storage: invalid component or file name")
)
