package usecase

import (
	"sync"

	"github.com/juju/clock"

	"livenotify-srv/internal/alert"
	"livenotify-srv/internal/moderation"
	"livenotify-srv/internal/safety"
	"livenotify-srv/internal/storage"
	"livenotify-srv/pkg/log"
)

const (
	component = "SensitiveWords"
	file      = "violation.json"
)

type implUseCase struct {
	logger      log.Logger
	storage     storage.Store
	permissions moderation.PermissionStore
	checker     safety.Checker
	sessions    moderation.SessionProvider
	alert       alert.UseCase
	clock       clock.Clock

	mu     sync.Mutex
	counts map[string]int
	// saveMu orders counter writes
	saveMu sync.Mutex
}

// New returns the moderation use case. sessions and alerts may be nil.
func New(
	logger log.Logger,
	st storage.Store,
	permissions moderation.PermissionStore,
	checker safety.Checker,
	sessions moderation.SessionProvider,
	alerts alert.UseCase,
	clk clock.Clock,
) moderation.UseCase {
	if clk == nil {
		clk = clock.WallClock
	}
	return &implUseCase{
		logger:      logger,
		storage:     st,
		permissions: permissions,
		checker:     checker,
		sessions:    sessions,
		alert:       alerts,
		clock:       clk,
		counts:      make(map[string]int),
	}
}
