package usecase

import (
	"sync"
	"time"

	"github.com/juju/clock"

	"livenotify-srv/internal/alert"
	"livenotify-srv/pkg/discord"
	"livenotify-srv/pkg/log"
)

// DefaultPollFailureThrottle is the minimum gap between two poll failure alerts.
const DefaultPollFailureThrottle = 10 * time.Minute

type implUseCase struct {
	logger   log.Logger
	discord  discord.IDiscord
	clock    clock.Clock
	throttle time.Duration

	mu              sync.Mutex
	lastPollFailure time.Time
}

// New returns an alert use case posting to d. A nil d yields a use case that only logs.
func New(logger log.Logger, d discord.IDiscord, clk clock.Clock) alert.UseCase {
	if clk == nil {
		clk = clock.WallClock
	}
	return &implUseCase{
		logger:   logger,
		discord:  d,
		clock:    clk,
		throttle: DefaultPollFailureThrottle,
	}
}
