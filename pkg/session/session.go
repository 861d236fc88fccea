// Package session owns the diagram being edited and runs the per-transaction
// pipeline: commit, ghost reconciliation, and equation table rebuild.
package session

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
	"github.com/dd0wney/cluso-stockflow/pkg/ghost"
	"github.com/dd0wney/cluso-stockflow/pkg/issues"
	"github.com/dd0wney/cluso-stockflow/pkg/logging"
	"github.com/dd0wney/cluso-stockflow/pkg/metrics"
	"github.com/dd0wney/cluso-stockflow/pkg/pipeline"
	"github.com/google/uuid"
)

var (
	// ErrReentrantTransaction is returned by Apply when called while another
	// Apply, or a table refresh it triggered, is still running.
	ErrReentrantTransaction = errors.New("session: transaction started from inside another transaction")
	// ErrNoSuchRow is returned when a table write-back names no row.
	ErrNoSuchRow = errors.New("session: no equation table row with that name")
)

const reconcileTx = "reconcile"

// Options wires a Session. Zero fields select defaults.
type Options struct {
	Graph    *diagram.Graph
	Resolver *ghost.Resolver
	Pipeline *pipeline.Pipeline
	Logger   logging.Logger
	Metrics  *metrics.Registry
}

// Session is one open diagram. It is not safe for concurrent use; the editor
// drives it from a single goroutine.
type Session struct {
	id       uuid.UUID
	store    *diagram.Store
	resolver *ghost.Resolver
	pipeline *pipeline.Pipeline
	logger   logging.Logger
	metrics  *metrics.Registry

	table     EquationTable
	listeners []func(EquationTable)
	applying  bool
}

// New opens a session on opts.Graph, or on an empty diagram.
func New(opts Options) *Session {
	s := &Session{
		id:       uuid.New(),
		store:    diagram.NewStoreFrom(opts.Graph),
		resolver: opts.Resolver,
		pipeline: opts.Pipeline,
		metrics:  opts.Metrics,
	}
	s.logger = logging.OrNop(opts.Logger).With(
		logging.Component("session"),
		logging.String("session_id", s.id.String()))
	if s.resolver == nil {
		s.resolver = ghost.NewResolver(opts.Logger)
	}
	if s.pipeline == nil {
		s.pipeline = pipeline.New(pipeline.Options{Logger: opts.Logger, Metrics: opts.Metrics})
	}
	s.table = BuildTable(s.store.Graph())
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Graph returns the committed diagram.
func (s *Session) Graph() *diagram.Graph { return s.store.Graph() }

// Table returns the equation table as of the last completed Apply.
func (s *Session) Table() EquationTable { return s.table }

// OnRefresh registers fn to receive the equation table after every completed
// Apply. fn must not call Apply.
func (s *Session) OnRefresh(fn func(EquationTable)) {
	s.listeners = append(s.listeners, fn)
}

// Apply runs fn as one transaction named name. When it commits, orphaned
// ghosts are reconciled in a second transaction and the equation table is
// rebuilt and published, exactly once. The report lists what reconciliation
// removed.
func (s *Session) Apply(name string, fn func(tx *diagram.Tx) error) (ghost.Report, error) {
	if s.applying {
		return ghost.Report{}, fmt.Errorf("%w: %q", ErrReentrantTransaction, name)
	}
	s.applying = true
	defer func() { s.applying = false }()

	if err := s.run(name, fn); err != nil {
		return ghost.Report{}, err
	}

	report, err := s.reconcile()
	if err != nil {
		return report, err
	}

	s.refresh()
	return report, nil
}

func (s *Session) run(name string, fn func(tx *diagram.Tx) error) error {
	tx, err := s.store.Begin(name)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		s.recordTx(name, "rolled_back", 0)
		s.logger.Debug("transaction rolled back", logging.Tx(name), logging.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		s.recordTx(name, "failed", 0)
		s.logger.Warn("transaction rejected", logging.Tx(name), logging.Error(err))
		return err
	}
	s.recordTx(name, "committed", tx.Changes())
	s.logger.Debug("transaction committed", logging.Tx(name), logging.Count(tx.Changes()))
	return nil
}

func (s *Session) reconcile() (ghost.Report, error) {
	tx, err := s.store.Begin(reconcileTx)
	if err != nil {
		return ghost.Report{}, err
	}
	report := s.resolver.Reconcile(tx.Graph())
	if report.Empty() {
		tx.Rollback()
		return report, nil
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("session: reconcile: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordReconcile(len(report.RemovedNodes), len(report.RemovedLinks))
	}
	s.logger.Info("removed orphaned ghosts",
		logging.Strings("nodes", report.RemovedNodes),
		logging.Strings("links", report.RemovedLinks))
	return report, nil
}

func (s *Session) refresh() {
	g := s.store.Graph()
	s.table = BuildTable(g)
	if s.metrics != nil {
		nodes, links := make(map[string]int), make(map[string]int)
		for _, n := range g.Nodes() {
			nodes[string(n.Category)]++
		}
		for _, l := range g.Links() {
			links[string(l.Category)]++
		}
		s.metrics.UpdateDiagramMetrics(nodes, links)
	}
	for _, fn := range s.listeners {
		fn(s.table)
	}
}

func (s *Session) recordTx(name, status string, changes int) {
	if s.metrics != nil {
		s.metrics.RecordTransaction(name, status, changes)
	}
}

// SetEquation writes an equation back from the table row named name.
func (s *Session) SetEquation(name, equation string) error {
	row, ok := s.table.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoSuchRow, name)
	}
	_, err := s.Apply("set equation", func(tx *diagram.Tx) error {
		return tx.SetEquation(row.Key, equation)
	})
	return err
}

// SetFlowDirection writes the direction toggle back from the flow row named
// name. biflow false restricts the flow to non-negative rates.
func (s *Session) SetFlowDirection(name string, biflow bool) error {
	row, ok := s.table.Lookup(name)
	if !ok || !row.HasDirection() {
		return fmt.Errorf("%w: flow %q", ErrNoSuchRow, name)
	}
	_, err := s.Apply("set direction", func(tx *diagram.Tx) error {
		return tx.SetBiflow(row.Key, biflow)
	})
	return err
}

// Prepare runs the pre-run pipeline on the committed diagram.
func (s *Session) Prepare(req pipeline.Request) (*pipeline.Run, issues.List, error) {
	return s.pipeline.Prepare(s.store.Graph(), req)
}
