package middleware

import (
	"livenotify-srv/pkg/jwt"
	"livenotify-srv/pkg/log"
)

type Middleware struct {
	l          log.Logger
	jwtManager jwt.Manager
	limiter    *SubjectLimiter
}

// New returns the middleware set. limiter may be nil to disable rate limiting.
func New(l log.Logger, jwtManager jwt.Manager, limiter *SubjectLimiter) Middleware {
	return Middleware{
		l:          l,
		jwtManager: jwtManager,
		limiter:    limiter,
	}
}
