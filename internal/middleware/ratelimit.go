package middleware

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per subject.
	RequestsPerSecond float64
	Burst             int
	// IdleTTL is how long an unused limiter is kept.
	IdleTTL time.Duration
}

func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 5,
		Burst:             20,
		IdleTTL:           10 * time.Minute,
	}
}

type subjectEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SubjectLimiter keeps one token bucket per subject.
type SubjectLimiter struct {
	mu      sync.Mutex
	entries map[string]*subjectEntry
	cfg     RateLimitConfig
	clock   clock.Clock
}

func NewSubjectLimiter(cfg RateLimitConfig, clk clock.Clock) *SubjectLimiter {
	if clk == nil {
		clk = clock.WallClock
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig().IdleTTL
	}
	return &SubjectLimiter{
		entries: make(map[string]*subjectEntry),
		cfg:     cfg,
		clock:   clk,
	}
}

// Allow consumes one token of key.
func (l *SubjectLimiter) Allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &subjectEntry{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Sweep drops limiters idle for longer than IdleTTL and returns how many.
func (l *SubjectLimiter) Sweep() int {
	cutoff := l.clock.Now().Add(-l.cfg.IdleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
			n++
		}
	}
	return n
}
