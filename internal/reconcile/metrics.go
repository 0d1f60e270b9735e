package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	passCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prfill_passes_total",
			Help: "Total number of reconciliation passes by result",
		},
		[]string{"result"},
	)

	issueCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prfill_issues_total",
			Help: "Total number of evaluated issues by outcome",
		},
		[]string{"outcome"},
	)

	lateCallCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prfill_late_calls_total",
			Help: "Total number of outbound calls that completed after their deadline",
		},
	)

	passDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prfill_pass_duration_seconds",
			Help:    "Duration of a reconciliation pass",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)
)
