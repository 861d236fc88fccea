package constraints

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
)

// EquationConstraint validates that real nodes of a category carry an
// equation. Documents written by hand or by older editors may omit them.
type EquationConstraint struct {
	Category diagram.Category // Category to apply constraint to
	Severity Severity         // Severity of a missing equation
}

// Name returns the constraint name
func (ec *EquationConstraint) Name() string {
	return fmt.Sprintf("EquationConstraint(%s)", ec.Category)
}

// Validate checks the equation constraint against all real nodes of the
// target category
func (ec *EquationConstraint) Validate(graph diagram.Reader) ([]Violation, error) {
	violations := make([]Violation, 0)

	if !ec.Category.HasEquation() {
		return nil, fmt.Errorf("category %q has no equation", ec.Category)
	}

	for _, node := range graph.Nodes() {
		if node.Category != ec.Category || node.IsGhost() {
			continue
		}
		if strings.TrimSpace(node.Equation) != "" {
			continue
		}
		violations = append(violations, Violation{
			Type:       MissingEquation,
			Severity:   ec.Severity,
			NodeKey:    node.Key,
			Constraint: ec.Name(),
			Message:    fmt.Sprintf("%s '%s' has no equation", node.Category, node.Label()),
			Details: map[string]any{
				"category": string(node.Category),
				"label":    node.Label(),
			},
		})
	}

	return violations, nil
}

// LabelConstraint validates that every real node label is non-empty and does
// not read as a number. Rename enforces this; loaded documents may not.
// Unlabelled clouds are allowed since nothing refers to them by name.
type LabelConstraint struct{}

// Name returns the constraint name
func (lc *LabelConstraint) Name() string {
	return "LabelConstraint"
}

// Validate checks every node label
func (lc *LabelConstraint) Validate(graph diagram.Reader) ([]Violation, error) {
	violations := make([]Violation, 0)

	for _, node := range graph.Nodes() {
		if node.IsGhost() || unnamedCloud(node) {
			continue
		}
		var reason string
		switch {
		case strings.TrimSpace(node.Name()) == "":
			reason = "is empty"
		case diagram.IsNumeric(node.Name()):
			reason = "reads as a number"
		default:
			continue
		}
		violations = append(violations, Violation{
			Type:       InvalidLabel,
			Severity:   Error,
			NodeKey:    node.Key,
			Constraint: lc.Name(),
			Message:    fmt.Sprintf("Label '%s' of node %s %s", node.Label(), node.Key, reason),
			Details: map[string]any{
				"label": node.Label(),
			},
		})
	}

	return violations, nil
}

func unnamedCloud(n *diagram.Node) bool {
	return n.Category == diagram.Cloud && strings.TrimSpace(n.Name()) == ""
}
