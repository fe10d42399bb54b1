package usecase

import (
	"github.com/juju/clock"

	"livenotify-srv/internal/livenotify"
	"livenotify-srv/internal/metrics"
	"livenotify-srv/internal/notify"
	"livenotify-srv/internal/roomstate"
	"livenotify-srv/internal/safety"
	"livenotify-srv/internal/subscription"
	"livenotify-srv/pkg/log"
)

type implUseCase struct {
	logger     log.Logger
	registry   *subscription.Registry
	rooms      *roomstate.Store
	configs    *notify.ConfigStore
	dispatcher *notify.Dispatcher
	checker    safety.Checker
	metrics    *metrics.Collector
	clock      clock.Clock
}

// Deps groups the stores and services the engine works on.
type Deps struct {
	Registry   *subscription.Registry
	Rooms      *roomstate.Store
	Configs    *notify.ConfigStore
	Dispatcher *notify.Dispatcher
	Checker    safety.Checker
	// Metrics and Clock are optional.
	Metrics *metrics.Collector
	Clock   clock.Clock
}

func New(logger log.Logger, deps Deps) livenotify.UseCase {
	clk := deps.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	return &implUseCase{
		logger:     logger,
		registry:   deps.Registry,
		rooms:      deps.Rooms,
		configs:    deps.Configs,
		dispatcher: deps.Dispatcher,
		checker:    deps.Checker,
		metrics:    deps.Metrics,
		clock:      clk,
	}
}
