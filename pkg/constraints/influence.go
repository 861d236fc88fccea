package constraints

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
	"github.com/dd0wney/cluso-stockflow/pkg/equation"
	"github.com/dd0wney/cluso-stockflow/pkg/issues"
)

// MissingInfluence names the identifiers a valve's rate uses without an
// influence link from a node of that name.
type MissingInfluence struct {
	Valve    string
	ValveKey string
	Missing  []string
}

// Issue converts the finding into a structural issue.
func (m MissingInfluence) Issue() issues.Issue {
	return issues.Issue{
		Kind:    issues.MissingInfluence,
		Subject: m.Valve,
		Names:   m.Missing,
		Message: fmt.Sprintf("flow %s uses %s without an influence link", m.Valve, strings.Join(m.Missing, ", ")),
	}
}

// CheckInfluences compares the identifiers in each real valve's equation with
// the canonical names of the nodes that influence it. Influences drawn into a
// ghost of the valve count for the valve. Results follow node order; missing
// names are sorted.
func CheckInfluences(graph diagram.Reader, scanner *equation.Scanner) []MissingInfluence {
	if scanner == nil {
		scanner = equation.NewScanner(nil)
	}

	// canonical valve name -> names of influencing nodes
	incoming := make(map[string]equation.Set)
	for _, link := range graph.Links() {
		if link.Category != diagram.Influence {
			continue
		}
		to, ok := graph.Node(link.To)
		if !ok || to.Category != diagram.Valve {
			continue
		}
		from, ok := graph.Node(link.From)
		if !ok {
			continue
		}
		if incoming[to.Name()] == nil {
			incoming[to.Name()] = equation.NewSet()
		}
		incoming[to.Name()].Add(from.Name())
	}

	var out []MissingInfluence
	for _, node := range graph.Nodes() {
		if node.Category != diagram.Valve || node.IsGhost() {
			continue
		}
		missing := scanner.Identifiers(node.Equation).Minus(incoming[node.Name()])
		if missing.Len() == 0 {
			continue
		}
		out = append(out, MissingInfluence{
			Valve:    node.Label(),
			ValveKey: node.Key,
			Missing:  missing.Sorted(),
		})
	}
	return out
}

// InfluenceConstraint exposes CheckInfluences to the constraint validator.
type InfluenceConstraint struct {
	Scanner *equation.Scanner
}

// Name returns the constraint name
func (ic *InfluenceConstraint) Name() string {
	return "InfluenceConstraint"
}

// Validate reports one violation per valve with missing influences
func (ic *InfluenceConstraint) Validate(graph diagram.Reader) ([]Violation, error) {
	violations := make([]Violation, 0)
	for _, m := range CheckInfluences(graph, ic.Scanner) {
		violations = append(violations, Violation{
			Type:       MissingInfluenceLink,
			Severity:   Error,
			NodeKey:    m.ValveKey,
			Constraint: ic.Name(),
			Message:    m.Issue().Message,
			Details: map[string]any{
				"valve":   m.Valve,
				"missing": m.Missing,
			},
		})
	}
	return violations, nil
}
