package constraints

import (
	"fmt"

	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
)

// Direction specifies link direction for cardinality constraints
type Direction int

const (
	Outgoing Direction = iota // Links from this node
	Incoming                  // Links to this node
	Any                       // Links in either direction
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "Outgoing"
	case Incoming:
		return "Incoming"
	case Any:
		return "Any"
	default:
		return "Unknown"
	}
}

// CardinalityConstraint validates the number of links a node has
type CardinalityConstraint struct {
	Category     diagram.Category     // Node category to apply constraint to
	LinkCategory diagram.LinkCategory // Category of link (empty = any)
	Direction    Direction            // Direction of links to count
	Min          int                  // Minimum number of links (0 = optional)
	Max          int                  // Maximum number of links (0 = unlimited)
	Severity     Severity
}

// Name returns the constraint name
func (cc *CardinalityConstraint) Name() string {
	linkCategory := string(cc.LinkCategory)
	if linkCategory == "" {
		linkCategory = "*"
	}
	return fmt.Sprintf("CardinalityConstraint(%s,%s,%s,[%d,%d])",
		cc.Category, linkCategory, cc.Direction, cc.Min, cc.Max)
}

// Validate checks the cardinality constraint against all nodes of the target
// category
func (cc *CardinalityConstraint) Validate(graph diagram.Reader) ([]Violation, error) {
	violations := make([]Violation, 0)

	links := graph.Links()
	for _, node := range graph.Nodes() {
		if node.Category != cc.Category {
			continue
		}
		linkCount := cc.countLinks(links, node.Key)

		if cc.Min > 0 && linkCount < cc.Min {
			violations = append(violations, Violation{
				Type:       CardinalityViolation,
				Severity:   cc.Severity,
				NodeKey:    node.Key,
				Constraint: cc.Name(),
				Message: fmt.Sprintf("Node %s has %d %s link(s) of category '%s', minimum is %d",
					node.Key, linkCount, cc.Direction, cc.LinkCategory, cc.Min),
				Details: map[string]any{
					"category":      string(cc.Category),
					"link_category": string(cc.LinkCategory),
					"direction":     cc.Direction.String(),
					"count":         linkCount,
					"min":           cc.Min,
				},
			})
		}

		if cc.Max > 0 && linkCount > cc.Max {
			violations = append(violations, Violation{
				Type:       CardinalityViolation,
				Severity:   cc.Severity,
				NodeKey:    node.Key,
				Constraint: cc.Name(),
				Message: fmt.Sprintf("Node %s has %d %s link(s) of category '%s', maximum is %d",
					node.Key, linkCount, cc.Direction, cc.LinkCategory, cc.Max),
				Details: map[string]any{
					"category":      string(cc.Category),
					"link_category": string(cc.LinkCategory),
					"direction":     cc.Direction.String(),
					"count":         linkCount,
					"max":           cc.Max,
				},
			})
		}
	}

	return violations, nil
}

// countLinks counts links for a node based on direction and category
func (cc *CardinalityConstraint) countLinks(links []*diagram.Link, key string) int {
	count := 0
	for _, link := range links {
		if cc.LinkCategory != "" && link.Category != cc.LinkCategory {
			continue
		}
		if (cc.Direction == Outgoing || cc.Direction == Any) && link.From == key {
			count++
		}
		if (cc.Direction == Incoming || cc.Direction == Any) && link.To == key {
			count++
		}
	}
	return count
}
