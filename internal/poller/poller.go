// Package poller runs the periodic live status sweep over every followed
// streamer.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/juju/clock"

	"livenotify-srv/internal/alert"
	"livenotify-srv/internal/livenotify"
	"livenotify-srv/internal/metrics"
	"livenotify-srv/internal/model"
	"livenotify-srv/pkg/bilibili"
	"livenotify-srv/pkg/log"
	"livenotify-srv/pkg/onebot"
)

const (
	DefaultInterval     = 30 * time.Second
	DefaultBackoff      = 5 * time.Second
	DefaultFetchTimeout = 10 * time.Second
)

var (
	ErrNoSession = errors.New("poller: no bot session")
	ErrFetch     = errors.New("poller: status fetch failed")
)

// StatusFetcher returns the room status of a batch of streamers keyed by uid.
type StatusFetcher interface {
	GetStatusInfoByUIDs(ctx context.Context, uids []int64) (map[string]model.RoomInfo, error)
}

// SessionProvider hands out the bot session of the current cycle.
type SessionProvider interface {
	Session(ctx context.Context) (onebot.Sender, error)
}

type Config struct {
	Interval     time.Duration
	Backoff      time.Duration
	FetchTimeout time.Duration
}

type Deps struct {
	UseCase  livenotify.UseCase
	Fetcher  StatusFetcher
	Sessions SessionProvider
	Alert    alert.UseCase // optional
	Metrics  *metrics.Collector
	Clock    clock.Clock
}

type Poller struct {
	cfg    Config
	deps   Deps
	logger log.Logger
}

// New returns a Poller. Zero durations in cfg take the defaults.
func New(cfg Config, deps Deps, logger log.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if deps.Clock == nil {
		deps.Clock = clock.WallClock
	}
	return &Poller{cfg: cfg, deps: deps, logger: logger}
}

// Run polls until ctx is done. Cycle errors are logged and never end the loop.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Infof(ctx, "poller.Run: started, interval %s", p.cfg.Interval)
	for {
		start := p.deps.Clock.Now()
		outcome, err := p.cycle(ctx)
		if err != nil && ctx.Err() == nil {
			p.logger.Warnf(ctx, "poller.Run: %v", err)
		}

		var wait time.Duration
		switch outcome {
		case metrics.OutcomeNoSession:
			wait = p.cfg.Backoff
		case metrics.OutcomeOK:
			wait = max(0, start.Add(p.cfg.Interval).Sub(p.deps.Clock.Now()))
		default:
			wait = p.cfg.Interval
		}

		if err := p.sleep(ctx, wait); err != nil {
			p.logger.Infof(ctx, "poller.Run: stopped")
			return err
		}
	}
}

// RunOnce runs a single cycle and reports why it did not complete, if it did not.
func (p *Poller) RunOnce(ctx context.Context) error {
	_, err := p.cycle(ctx)
	return err
}

func (p *Poller) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.deps.Clock.After(d):
		return nil
	}
}

func (p *Poller) cycle(ctx context.Context) (string, error) {
	start := p.deps.Clock.Now()

	sender, err := p.deps.Sessions.Session(ctx)
	if err != nil {
		p.deps.Metrics.PollCycle(metrics.OutcomeNoSession, 0)
		return metrics.OutcomeNoSession, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	ids := p.deps.UseCase.SubscribedEntities()
	p.deps.Metrics.Subscribed(len(ids))
	if len(ids) == 0 {
		p.deps.Metrics.PollCycle(metrics.OutcomeIdle, 0)
		return metrics.OutcomeIdle, nil
	}

	uids := make([]int64, 0, len(ids))
	for _, id := range ids {
		uid, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			p.logger.Warnf(ctx, "poller.cycle: skipping malformed uid %q", id)
			continue
		}
		uids = append(uids, uid)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	rooms, err := p.deps.Fetcher.GetStatusInfoByUIDs(fetchCtx, uids)
	cancel()
	if err != nil {
		p.deps.Metrics.PollCycle(metrics.OutcomeFailed, 0)
		p.reportFailure(ctx, err, len(uids))
		return metrics.OutcomeFailed, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	keys := make([]string, 0, len(rooms))
	for k := range rooms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if ctx.Err() != nil {
			break
		}
		p.handle(ctx, sender, rooms[k])
	}

	if err := p.deps.UseCase.Persist(ctx); err != nil {
		p.logger.Errorf(ctx, "poller.cycle: persist: %v", err)
	}

	elapsed := p.deps.Clock.Now().Sub(start)
	p.deps.Metrics.PollCycle(metrics.OutcomeOK, elapsed.Seconds())
	p.logger.Debugf(ctx, "poller.cycle: %d streamers in %s", len(rooms), elapsed)
	return metrics.OutcomeOK, nil
}

// handle isolates one streamer so a panic in its pipeline does not cost the
// rest of the batch.
func (p *Poller) handle(ctx context.Context, sender onebot.Sender, info model.RoomInfo) {
	defer func() {
		if r := recover(); r != nil {
			p.deps.Metrics.EntityPanic()
			p.logger.Errorf(ctx, "poller.handle: uid %d: panic: %v", info.UID, r)
		}
	}()
	p.deps.UseCase.HandleRoom(ctx, sender, info)
}

func (p *Poller) reportFailure(ctx context.Context, err error, entities int) {
	if p.deps.Alert == nil {
		return
	}
	reason := "fetch"
	var apiErr *bilibili.APIError
	if errors.As(err, &apiErr) {
		reason = "api"
	}
	in := alert.PollFailureInput{Reason: reason, Err: err, Entities: entities, At: p.deps.Clock.Now()}
	if aerr := p.deps.Alert.DispatchPollFailure(ctx, in); aerr != nil {
		p.logger.Warnf(ctx, "poller.reportFailure: %v", aerr)
	}
}
