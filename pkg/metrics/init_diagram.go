package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDiagramMetrics() {
	r.DiagramNodes = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stockflow_diagram_nodes",
			Help: "Number of nodes in the diagram by category",
		},
		[]string{"category"},
	)

	r.DiagramLinks = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "stockflow_diagram_links",
			Help: "Number of links in the diagram by category",
		},
		[]string{"category"},
	)

	r.TransactionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockflow_transactions_total",
			Help: "Total number of diagram transactions",
		},
		[]string{"name", "status"},
	)

	r.TransactionChanges = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockflow_transaction_changes",
			Help:    "Number of mutations per committed transaction",
			Buckets: []float64{1, 2, 5, 10, 50, 100, 500},
		},
	)

	r.ReconcileNodesRemovedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "stockflow_reconcile_nodes_removed_total",
			Help: "Total number of nodes removed by reconciliation, orphaned ghosts and the valves of their flows",
		},
	)

	r.ReconcileLinksRemovedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "stockflow_reconcile_links_removed_total",
			Help: "Total number of links removed together with orphaned ghosts",
		},
	)
}
