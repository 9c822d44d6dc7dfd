// Package metrics exposes Prometheus collectors for the insight engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Metrics holds Prometheus metrics for analytics recomputation.
type Metrics struct {
	// Insight generation runs
	RecomputesTotal   *prometheus.CounterVec
	RecomputeDuration prometheus.Histogram
	InsightsGenerated *prometheus.CounterVec

	// Narrative generator calls
	NarrativeCallsTotal   *prometheus.CounterVec
	NarrativeMalformed    *prometheus.CounterVec
	NarrativeCallDuration prometheus.Histogram

	// Habit check-ins
	StreakRecomputesTotal prometheus.Counter

	// Event ledger
	EventsTrackedTotal *prometheus.CounterVec
	EventTrackFailures prometheus.Counter
}

// New returns the process-wide metrics, registering them on first use.
//
// Metrics:
//   - stride_recomputes_total{outcome}
//   - stride_recompute_duration_seconds
//   - stride_insights_generated_total{type}
//   - stride_narrative_calls_total{type,outcome}
//   - stride_narrative_malformed_total{type}
//   - stride_narrative_call_duration_seconds
//   - stride_streak_recomputes_total
//   - stride_events_tracked_total{event_type}
//   - stride_event_track_failures_total
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RecomputesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "stride_recomputes_total",
					Help: "Total number of insight generation runs",
				},
				[]string{"outcome"},
			),
			RecomputeDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "stride_recompute_duration_seconds",
					Help:    "Duration of insight generation runs in seconds",
					Buckets: prometheus.DefBuckets,
				},
			),
			InsightsGenerated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "stride_insights_generated_total",
					Help: "Total number of insights written",
				},
				[]string{"type"},
			),
			NarrativeCallsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "stride_narrative_calls_total",
					Help: "Total number of narrative generator calls",
				},
				[]string{"type", "outcome"},
			),
			NarrativeMalformed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "stride_narrative_malformed_total",
					Help: "Narrative responses that could not be parsed and fell back to defaults",
				},
				[]string{"type"},
			),
			NarrativeCallDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "stride_narrative_call_duration_seconds",
					Help:    "Duration of narrative generator calls in seconds",
					Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
				},
			),
			StreakRecomputesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "stride_streak_recomputes_total",
					Help: "Total number of habit streak recomputations",
				},
			),
			EventsTrackedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "stride_events_tracked_total",
					Help: "Total number of analytics events recorded",
				},
				[]string{"event_type"},
			),
			EventTrackFailures: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "stride_event_track_failures_total",
					Help: "Analytics events that could not be recorded",
				},
			),
		}
	})
	return globalMetrics
}
