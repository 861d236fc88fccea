package constraints

import (
	"fmt"

	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
	"github.com/dd0wney/cluso-stockflow/pkg/ghost"
)

// EndpointConstraint reports every link whose endpoints or valve break the
// typing rules of the diagram. Unlike diagram.CheckStructure it collects all
// offending links instead of stopping at the first.
type EndpointConstraint struct{}

// Name returns the constraint name
func (ec *EndpointConstraint) Name() string {
	return "EndpointConstraint"
}

// Validate checks every link
func (ec *EndpointConstraint) Validate(graph diagram.Reader) ([]Violation, error) {
	violations := make([]Violation, 0)

	report := func(link *diagram.Link, msg string) {
		violations = append(violations, Violation{
			Type:       InvalidStructure,
			Severity:   Error,
			LinkKey:    link.Key,
			Constraint: ec.Name(),
			Message:    fmt.Sprintf("Link %s: %s", link.Key, msg),
			Details: map[string]any{
				"category": string(link.Category),
				"from":     link.From,
				"to":       link.To,
			},
		})
	}

	for _, link := range graph.Links() {
		from, fromOK := graph.Node(link.From)
		to, toOK := graph.Node(link.To)
		if !fromOK || !toOK {
			report(link, "endpoint does not exist")
			continue
		}
		switch link.Category {
		case diagram.Flow:
			if !from.Category.FlowEndpoint() || !to.Category.FlowEndpoint() {
				report(link, "flow endpoints must be stocks or clouds")
			}
			if valve, ok := graph.Node(link.ValveKey()); !ok || valve.Category != diagram.Valve {
				report(link, "flow has no valve")
			}
		case diagram.Influence:
			if to.Category.FlowEndpoint() {
				report(link, fmt.Sprintf("influence cannot target a %s", to.Category))
			}
		default:
			report(link, fmt.Sprintf("unknown category %q", link.Category))
		}
	}

	return violations, nil
}

// GhostConstraint reports ghosts without a real node to mirror. The resolver
// removes them after every transaction, so a violation means the document
// was loaded without reconciliation.
type GhostConstraint struct{}

// Name returns the constraint name
func (gc *GhostConstraint) Name() string {
	return "GhostConstraint"
}

// Validate lists orphaned ghosts
func (gc *GhostConstraint) Validate(graph diagram.Reader) ([]Violation, error) {
	violations := make([]Violation, 0)
	for _, key := range ghost.Orphans(graph) {
		node, _ := graph.Node(key)
		violations = append(violations, Violation{
			Type:       OrphanGhost,
			Severity:   Warning,
			NodeKey:    key,
			Constraint: gc.Name(),
			Message:    fmt.Sprintf("Ghost '%s' has no %s named '%s'", node.Label(), node.Category, node.Name()),
		})
	}
	return violations, nil
}
