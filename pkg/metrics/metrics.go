package metrics

import (
	"runtime"
	"time"
)

// Outcomes of a run preparation.
const (
	OutcomeReady    = "ready"
	OutcomeBlocked  = "blocked"
	OutcomeAdvisory = "advisory"
	OutcomeCorrupt  = "corrupt"
)

// RecordTransaction records a finished diagram transaction
func (r *Registry) RecordTransaction(name, status string, changes int) {
	r.TransactionsTotal.WithLabelValues(name, status).Inc()
	if status == "committed" {
		r.TransactionChanges.Observe(float64(changes))
	}
}

// RecordReconcile records what a ghost reconciliation removed
func (r *Registry) RecordReconcile(nodes, links int) {
	r.ReconcileNodesRemovedTotal.Add(float64(nodes))
	r.ReconcileLinksRemovedTotal.Add(float64(links))
}

// UpdateDiagramMetrics replaces the per-category node and link gauges
func (r *Registry) UpdateDiagramMetrics(nodes, links map[string]int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.DiagramNodes.Reset()
	for category, n := range nodes {
		r.DiagramNodes.WithLabelValues(category).Set(float64(n))
	}
	r.DiagramLinks.Reset()
	for category, n := range links {
		r.DiagramLinks.WithLabelValues(category).Set(float64(n))
	}
}

// RecordPreparation records a run preparation with its duration
func (r *Registry) RecordPreparation(outcome string, duration time.Duration) {
	r.RunPreparationsTotal.WithLabelValues(outcome).Inc()
	r.RunPrepareDuration.Observe(duration.Seconds())
}

// RecordIssue records one reported issue
func (r *Registry) RecordIssue(kind string) {
	r.RunIssuesTotal.WithLabelValues(kind).Inc()
}

// RecordSteps records the step count of a prepared run
func (r *Registry) RecordSteps(steps float64) {
	r.RunStepCount.Observe(steps)
}

// RecordStoreOperation records a project store operation
func (r *Registry) RecordStoreOperation(backend, operation, status string, duration time.Duration) {
	r.StoreOperationsTotal.WithLabelValues(backend, operation, status).Inc()
	r.StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordDocumentSize records the size of a project document moved by a store
func (r *Registry) RecordDocumentSize(backend, operation string, size int) {
	r.StoreDocumentBytes.WithLabelValues(backend, operation).Observe(float64(size))
}

// UpdateSystemMetrics refreshes process-level gauges
func (r *Registry) UpdateSystemMetrics(started time.Time) {
	r.StartTimeSeconds.Set(float64(started.Unix()))
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
}
