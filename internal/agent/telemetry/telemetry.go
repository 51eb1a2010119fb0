package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/voyagent/voyagent/config"
)

// Telemetry collects pipeline metrics. A nil *Telemetry is a valid no-op
// collector, so components never have to guard their recording calls.
type Telemetry struct {
	costTracking bool

	requests  *prometheus.CounterVec
	toolCalls *prometheus.CounterVec
	replans   *prometheus.CounterVec
	tripCost  prometheus.Histogram
	duration  prometheus.Histogram
}

// New builds the collector and registers its metrics. Pass nil to use the
// default registerer.
func New(cfg config.TelemetryConfig, reg prometheus.Registerer) *Telemetry {
	if !cfg.Enabled {
		return nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Telemetry{
		costTracking: cfg.CostTracking,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voyagent_trip_requests_total",
			Help: "Trip planning requests by final status.",
		}, []string{"status"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voyagent_tool_calls_total",
			Help: "Tool invocations by tool and status.",
		}, []string{"tool", "status"}),
		replans: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "voyagent_replans_total",
			Help: "Re-planning rounds by budget category.",
		}, []string{"category"}),
		tripCost: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voyagent_trip_cost_dollars",
			Help:    "Realized trip cost per completed run.",
			Buckets: prometheus.ExponentialBuckets(50, 2, 8),
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "voyagent_trip_duration_seconds",
			Help:    "End-to-end trip planning duration.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RecordRequest counts a finished request by status.
func (t *Telemetry) RecordRequest(status string) {
	if t == nil {
		return
	}
	t.requests.WithLabelValues(status).Inc()
}

// RecordToolCall counts one tool invocation.
func (t *Telemetry) RecordToolCall(tool, status string) {
	if t == nil {
		return
	}
	t.toolCalls.WithLabelValues(tool, status).Inc()
}

// RecordReplan counts one re-planning round.
func (t *Telemetry) RecordReplan(category string) {
	if t == nil {
		return
	}
	t.replans.WithLabelValues(category).Inc()
}

// RecordTripCost observes the realized cost of a completed run.
func (t *Telemetry) RecordTripCost(cost float64) {
	if t == nil || !t.costTracking {
		return
	}
	t.tripCost.Observe(cost)
}

// RecordDuration observes how long a run took.
func (t *Telemetry) RecordDuration(d time.Duration) {
	if t == nil {
		return
	}
	t.duration.Observe(d.Seconds())
}
