// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "livenotify"

// Poll cycle outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeNoSession = "no_session"
	OutcomeIdle      = "idle"
	OutcomeFailed    = "failed"
)

// Delivery results.
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Room event kinds.
const (
	EventStart       = "start"
	EventRestart     = "restart"
	EventStop        = "stop"
	EventTitleChange = "title_change"
)

// Collector is a prometheus.Collector over the poll loop and the dispatcher.
// A nil *Collector is valid and records nothing.
type Collector struct {
	pollCycles      *prometheus.CounterVec
	pollDuration    prometheus.Histogram
	notifications   *prometheus.CounterVec
	events          *prometheus.CounterVec
	subscribedCount prometheus.Gauge
	entityPanics    prometheus.Counter
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		pollCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "poll_cycles_total",
				Help:      "The number of poll cycles by outcome.",
			}, []string{"outcome"},
		),
		pollDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "poll_cycle_duration_seconds",
				Help:      "The time spent in one poll cycle, sleeping excluded.",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "notifications_total",
				Help:      "The number of per-group notifications by result.",
			}, []string{"result"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "room_events_total",
				Help:      "The number of detected room events by kind.",
			}, []string{"kind"},
		),
		subscribedCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "subscribed_streamers",
				Help:      "The number of streamers polled in the last cycle.",
			},
		),
		entityPanics: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "entity_pipeline_panics_total",
				Help:      "The number of recovered panics while handling one streamer.",
			},
		),
	}
}

func (c *Collector) PollCycle(outcome string, seconds float64) {
	if c == nil {
		return
	}
	c.pollCycles.WithLabelValues(outcome).Inc()
	if outcome == OutcomeOK {
		c.pollDuration.Observe(seconds)
	}
}

func (c *Collector) Notification(result string) {
	if c == nil {
		return
	}
	c.notifications.WithLabelValues(result).Inc()
}

func (c *Collector) RoomEvent(kind string) {
	if c == nil {
		return
	}
	c.events.WithLabelValues(kind).Inc()
}

func (c *Collector) Subscribed(n int) {
	if c == nil {
		return
	}
	c.subscribedCount.Set(float64(n))
}

func (c *Collector) EntityPanic() {
	if c == nil {
		return
	}
	c.entityPanics.Inc()
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.pollCycles.Describe(ch)
	c.pollDuration.Describe(ch)
	c.notifications.Describe(ch)
	c.events.Describe(ch)
	c.subscribedCount.Describe(ch)
	c.entityPanics.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.pollCycles.Collect(ch)
	c.pollDuration.Collect(ch)
	c.notifications.Collect(ch)
	c.events.Collect(ch)
	c.subscribedCount.Collect(ch)
	c.entityPanics.Collect(ch)
}
