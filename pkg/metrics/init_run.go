package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRunMetrics() {
	r.RunPreparationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockflow_run_preparations_total",
			Help: "Total number of run preparations by outcome",
		},
		[]string{"outcome"},
	)

	r.RunIssuesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockflow_run_issues_total",
			Help: "Total number of issues reported while preparing runs",
		},
		[]string{"kind"},
	)

	r.RunPrepareDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockflow_run_prepare_duration_seconds",
			Help:    "Run preparation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	r.RunStepCount = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockflow_run_steps",
			Help:    "Integration steps of prepared runs",
			Buckets: []float64{10, 100, 1000, 10000, 100000},
		},
	)
}
