package notify

import (
	"context"
	"strings"
	"time"

	"github.com/juju/clock"

	"livenotify-srv/internal/metrics"
	"livenotify-srv/internal/model"
	"livenotify-srv/pkg/log"
	"livenotify-srv/pkg/onebot"
)

// DefaultSendDelay is the pause after each attempted send.
const DefaultSendDelay = 500 * time.Millisecond

// Result summarizes one fan-out.
type Result struct {
	// Recipients are the eligible groups, in the order they were tried.
	Recipients []string
	// Succeeded are the groups that got the message or did not want it.
	Succeeded []string
	Failed    []string
}

// Dispatcher delivers one notification to every eligible follower of a streamer.
type Dispatcher struct {
	recipients  Recipients
	eligibility Eligibility
	configs     *ConfigStore
	clock       clock.Clock
	delay       time.Duration
	metrics     *metrics.Collector
	logger      log.Logger
}

// NewDispatcher returns a dispatcher. clk and m may be nil.
func NewDispatcher(
	recipients Recipients,
	eligibility Eligibility,
	configs *ConfigStore,
	clk clock.Clock,
	delay time.Duration,
	m *metrics.Collector,
	logger log.Logger,
) *Dispatcher {
	if clk == nil {
		clk = clock.WallClock
	}
	if delay < 0 {
		delay = DefaultSendDelay
	}
	return &Dispatcher{
		recipients:  recipients,
		eligibility: eligibility,
		configs:     configs,
		clock:       clk,
		delay:       delay,
		metrics:     m,
		logger:      logger,
	}
}

// Eligible returns the followers of entityID allowed to receive live notifications.
func (d *Dispatcher) Eligible(entityID string) []string {
	groups := d.recipients.GroupsFor(entityID)
	out := groups[:0:0]
	for _, g := range groups {
		if d.eligibility.CanNotify(g, model.FeatureLiveNotify) {
			out = append(out, g)
		}
	}
	return out
}

// Notify renders and sends the message of every eligible group. A failure for
// one group is logged and does not stop the others. It stops early only when
// ctx is done.
func (d *Dispatcher) Notify(ctx context.Context, sender onebot.Sender, entityID, label string, build Builder) Result {
	groups := d.Eligible(entityID)
	res := Result{Recipients: groups, Succeeded: []string{}, Failed: []string{}}

loop:
	for _, group := range groups {
		msg := build(d.configs.Get(group))
		if msg == nil {
			res.Succeeded = append(res.Succeeded, group)
			d.metrics.Notification(metrics.ResultSkipped)
			continue
		}

		if err := sender.SendGroupMessage(ctx, group, msg); err != nil {
			res.Failed = append(res.Failed, group)
			d.metrics.Notification(metrics.ResultFailed)
			d.logger.Errorf(ctx, "notify.Dispatcher.Notify: send %s to group %s: %v", label, group, err)
		} else {
			res.Succeeded = append(res.Succeeded, group)
			d.metrics.Notification(metrics.ResultSent)
		}

		if d.delay == 0 {
			continue
		}
		select {
		case <-ctx.Done():
			break loop
		case <-d.clock.After(d.delay):
		}
	}

	d.logger.Infof(ctx, "notify.Dispatcher.Notify: [%d/%d] groups notified of %s: %s",
		len(res.Succeeded), len(groups), label, strings.Join(res.Succeeded, ", "))
	return res
}
