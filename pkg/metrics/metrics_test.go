package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Verify all metrics are initialized
	if r.TransactionsTotal == nil {
		t.Error("TransactionsTotal not initialized")
	}
	if r.RunPreparationsTotal == nil {
		t.Error("RunPreparationsTotal not initialized")
	}
	if r.StoreOperationsTotal == nil {
		t.Error("StoreOperationsTotal not initialized")
	}
	if r.GoRoutines == nil {
		t.Error("GoRoutines not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	// Should return the same instance
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordTransaction(t *testing.T) {
	r := NewRegistry()

	r.RecordTransaction("rename", "committed", 1)
	r.RecordTransaction("rename", "committed", 3)
	r.RecordTransaction("rename", "rolled_back", 0)

	counter, err := r.TransactionsTotal.GetMetricWithLabelValues("rename", "committed")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}

	if metric.Counter.GetValue() != 2 {
		t.Errorf("Counter value = %v, want 2", metric.Counter.GetValue())
	}

	if got := testutil.ToFloat64(r.TransactionsTotal.WithLabelValues("rename", "rolled_back")); got != 1 {
		t.Errorf("rolled back = %v, want 1", got)
	}

	var hist dto.Metric
	if err := r.TransactionChanges.Write(&hist); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if hist.Histogram.GetSampleCount() != 2 || hist.Histogram.GetSampleSum() != 4 {
		t.Errorf("changes histogram count=%d sum=%v", hist.Histogram.GetSampleCount(), hist.Histogram.GetSampleSum())
	}
}

func TestRecordReconcile(t *testing.T) {
	r := NewRegistry()
	r.RecordReconcile(2, 5)
	r.RecordReconcile(0, 0)

	if got := testutil.ToFloat64(r.ReconcileNodesRemovedTotal); got != 2 {
		t.Errorf("ghosts removed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.ReconcileLinksRemovedTotal); got != 5 {
		t.Errorf("links removed = %v, want 5", got)
	}
}

func TestUpdateDiagramMetrics(t *testing.T) {
	r := NewRegistry()

	r.UpdateDiagramMetrics(map[string]int{"stock": 2, "valve": 1}, map[string]int{"flow": 1})
	r.UpdateDiagramMetrics(map[string]int{"stock": 3}, map[string]int{"flow": 0})

	if got := testutil.ToFloat64(r.DiagramNodes.WithLabelValues("stock")); got != 3 {
		t.Errorf("stock gauge = %v, want 3", got)
	}
	// Categories that disappear are dropped rather than left stale.
	if n := testutil.CollectAndCount(r.DiagramNodes); n != 1 {
		t.Errorf("node series = %d, want 1", n)
	}
}

func TestRecordPreparation(t *testing.T) {
	r := NewRegistry()

	r.RecordPreparation(OutcomeReady, 2*time.Millisecond)
	r.RecordPreparation(OutcomeBlocked, time.Millisecond)
	r.RecordIssue("MissingInfluence")
	r.RecordIssue("MissingInfluence")
	r.RecordSteps(100)

	expected := `
		# HELP stockflow_run_issues_total Total number of issues reported while preparing runs
		# TYPE stockflow_run_issues_total counter
		stockflow_run_issues_total{kind="MissingInfluence"} 2
	`
	if err := testutil.GatherAndCompare(r.GetPrometheusRegistry(), strings.NewReader(expected), "stockflow_run_issues_total"); err != nil {
		t.Error(err)
	}

	if got := testutil.ToFloat64(r.RunPreparationsTotal.WithLabelValues(OutcomeReady)); got != 1 {
		t.Errorf("ready = %v, want 1", got)
	}

	var metric dto.Metric
	if err := r.RunPrepareDuration.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("duration samples = %d, want 2", metric.Histogram.GetSampleCount())
	}
}

func TestRecordStoreOperation(t *testing.T) {
	r := NewRegistry()

	r.RecordStoreOperation("file", "put", "success", 10*time.Millisecond)
	r.RecordStoreOperation("file", "put", "success", 20*time.Millisecond)
	r.RecordStoreOperation("file", "get", "not_found", 5*time.Millisecond)
	r.RecordDocumentSize("file", "put", 1024)

	tests := []struct {
		name     string
		counter  prometheus.Counter
		expected float64
	}{
		{"put success", r.StoreOperationsTotal.WithLabelValues("file", "put", "success"), 2},
		{"get not found", r.StoreOperationsTotal.WithLabelValues("file", "get", "not_found"), 1},
		{"get success", r.StoreOperationsTotal.WithLabelValues("file", "get", "success"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var metric dto.Metric
			if err := tt.counter.Write(&metric); err != nil {
				t.Fatalf("Failed to write metric: %v", err)
			}
			if metric.Counter.GetValue() != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, metric.Counter.GetValue(), tt.expected)
			}
		})
	}
}

func TestUpdateSystemMetrics(t *testing.T) {
	r := NewRegistry()
	started := time.Unix(1700000000, 0)
	r.UpdateSystemMetrics(started)

	if got := testutil.ToFloat64(r.StartTimeSeconds); got != 1700000000 {
		t.Errorf("start time = %v", got)
	}
	if got := testutil.ToFloat64(r.GoRoutines); got < 1 {
		t.Errorf("goroutines = %v", got)
	}
}

func TestRegistryGathers(t *testing.T) {
	r := NewRegistry()
	r.RecordTransaction("add", "committed", 1)

	families, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	found := false
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "stockflow_") {
			t.Errorf("unexpected metric family %s", mf.GetName())
		}
		if mf.GetName() == "stockflow_transactions_total" {
			found = true
		}
	}
	if !found {
		t.Error("stockflow_transactions_total not gathered")
	}
}
