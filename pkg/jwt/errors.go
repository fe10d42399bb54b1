package jwt

import "errors"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingRole  = errors.New("missing role claim")
)
