package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Diagram Metrics
	DiagramNodes               *prometheus.GaugeVec
	DiagramLinks               *prometheus.GaugeVec
	TransactionsTotal          *prometheus.CounterVec
	TransactionChanges         prometheus.Histogram
	ReconcileNodesRemovedTotal prometheus.Counter
	ReconcileLinksRemovedTotal prometheus.Counter

	// Run Metrics
	RunPreparationsTotal *prometheus.CounterVec
	RunIssuesTotal       *prometheus.CounterVec
	RunPrepareDuration   prometheus.Histogram
	RunStepCount         prometheus.Histogram

	// Project Store Metrics
	StoreOperationsTotal   *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec
	StoreDocumentBytes     *prometheus.HistogramVec

	// System Metrics
	StartTimeSeconds prometheus.Gauge
	GoRoutines       prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.Mutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initDiagramMetrics()
	r.initRunMetrics()
	r.initStoreMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
