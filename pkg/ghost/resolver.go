// Package ghost removes ghost nodes whose canonical node is gone.
package ghost

import (
	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
	"github.com/dd0wney/cluso-stockflow/pkg/logging"
)

// Report lists what a reconciliation removed.
type Report struct {
	RemovedNodes []string
	RemovedLinks []string
	Passes       int
}

// Empty reports whether nothing was removed.
func (r Report) Empty() bool {
	return len(r.RemovedNodes) == 0 && len(r.RemovedLinks) == 0
}

type canonical struct {
	name     string
	category diagram.Category
}

// Resolver enforces ghost validity after each committed transaction.
type Resolver struct {
	logger logging.Logger
}

// NewResolver returns a resolver logging to logger (nil for none).
func NewResolver(logger logging.Logger) *Resolver {
	return &Resolver{logger: logging.OrNop(logger).With(logging.Component("ghost"))}
}

// Reconcile removes every ghost that has no real node of the same canonical
// name and category, together with the links incident to it, the flow it
// labels when it is a valve, and the valve of any flow removed that way. Clouds are never treated as ghosts. Passes repeat
// until one removes nothing, so Reconcile is idempotent.
func (r *Resolver) Reconcile(g *diagram.Graph) Report {
	var report Report
	for {
		report.Passes++
		if !r.pass(g, &report) {
			return report
		}
	}
}

func (r *Resolver) pass(g *diagram.Graph, report *Report) bool {
	canon := make(map[canonical]bool)
	for _, n := range g.Nodes() {
		if !n.IsGhost() {
			canon[canonical{n.Name(), n.Category}] = true
		}
	}

	removed := false
	for _, n := range g.Nodes() {
		if !n.IsGhost() || n.Category == diagram.Cloud {
			continue
		}
		if _, ok := g.Node(n.Key); !ok || canon[canonical{n.Name(), n.Category}] {
			continue
		}

		// Flows touching the ghost take their valves with them.
		gone := g.RemoveNode(n.Key)
		report.RemovedNodes = append(report.RemovedNodes, gone.Nodes...)
		report.RemovedLinks = append(report.RemovedLinks, gone.Links...)
		removed = true

		r.logger.Debug("removed orphaned ghost",
			logging.NodeKey(n.Key),
			logging.Label(n.Label()),
			logging.String("category", string(n.Category)),
			logging.Count(len(gone.Nodes)+len(gone.Links)))
	}
	return removed
}

// Orphans returns the keys of ghosts Reconcile would remove, without
// modifying the graph.
func Orphans(r diagram.Reader) []string {
	canon := make(map[canonical]bool)
	for _, n := range r.Nodes() {
		if !n.IsGhost() {
			canon[canonical{n.Name(), n.Category}] = true
		}
	}
	var out []string
	for _, n := range r.Nodes() {
		if n.IsGhost() && n.Category != diagram.Cloud && !canon[canonical{n.Name(), n.Category}] {
			out = append(out, n.Key)
		}
	}
	return out
}
