package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the ranking engine
type Metrics struct {
	VotesProcessed     *prometheus.CounterVec
	ModerationFlags    *prometheus.CounterVec
	RateLimitDecisions *prometheus.CounterVec
	FactChecks         *prometheus.CounterVec
	ProviderFailures   *prometheus.CounterVec
	SweepDuration      *prometheus.HistogramVec
	DerivedWriteErrors *prometheus.CounterVec
	EventsRanked       prometheus.Counter
}

// NewMetrics creates a new metrics instance
func NewMetrics(serviceName string) *Metrics {
	return &Metrics{
		VotesProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "veritas",
				Subsystem: serviceName,
				Name:      "votes_processed_total",
				Help:      "Total number of vote attempts by outcome",
			},
			[]string{"outcome"}, // accepted, rejected, rate_limited
		),
		ModerationFlags: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "veritas",
				Subsystem: serviceName,
				Name:      "moderation_flags_total",
				Help:      "Total number of moderation rejections by reason",
			},
			[]string{"reason"},
		),
		RateLimitDecisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "veritas",
				Subsystem: serviceName,
				Name:      "rate_limit_decisions_total",
				Help:      "Rate limiter decisions by action kind and outcome",
			},
			[]string{"action", "outcome"}, // allowed, denied, fail_open
		),
		FactChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "veritas",
				Subsystem: serviceName,
				Name:      "fact_checks_total",
				Help:      "Completed fact checks by acceptance outcome",
			},
			[]string{"outcome"}, // accepted, rejected_score, rejected_sources, rejected_both
		),
		ProviderFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "veritas",
				Subsystem: serviceName,
				Name:      "provider_failures_total",
				Help:      "Evidence provider and reasoner failures treated as zero evidence",
			},
			[]string{"provider"},
		),
		SweepDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "veritas",
				Subsystem: serviceName,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of batch sweeps in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"sweep"}, // trust, rank
		),
		DerivedWriteErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "veritas",
				Subsystem: serviceName,
				Name:      "derived_write_errors_total",
				Help:      "Failed derived-field writes awaiting repair by the next sweep",
			},
			[]string{"field"}, // rank_score, trust_score
		),
		EventsRanked: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "veritas",
				Subsystem: serviceName,
				Name:      "events_ranked_total",
				Help:      "Total number of events scored by the ranker",
			},
		),
	}
}
