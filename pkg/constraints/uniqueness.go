package constraints

import (
	"fmt"

	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
)

// UniqueScope defines the scope of uniqueness checking
type UniqueScope int

const (
	// ScopeGlobal means a label must be unique across every category
	ScopeGlobal UniqueScope = iota
	// ScopeCategory means a label must be unique within its category
	ScopeCategory
)

func (s UniqueScope) String() string {
	switch s {
	case ScopeGlobal:
		return "Global"
	case ScopeCategory:
		return "Category"
	default:
		return "Unknown"
	}
}

// UniqueLabelConstraint ensures real node labels are unique. Ghosts share
// the name of their canonical node and are ignored.
type UniqueLabelConstraint struct {
	// Category optionally restricts the check to one node category.
	Category diagram.Category

	// Scope determines whether uniqueness is global or per category. The
	// editor uses a single flat namespace, ScopeGlobal.
	Scope UniqueScope
}

// Name returns a human-readable name for this constraint
func (c *UniqueLabelConstraint) Name() string {
	if c.Category != "" {
		return fmt.Sprintf("UniqueLabel(%s)", c.Category)
	}
	if c.Scope == ScopeGlobal {
		return "UniqueLabelGlobal"
	}
	return "UniqueLabelPerCategory"
}

// labelGroup identifies one uniqueness bucket. Category is empty under
// ScopeGlobal.
type labelGroup struct {
	category diagram.Category
	label    string
}

// Validate checks that labels are unique according to the constraint scope
func (c *UniqueLabelConstraint) Validate(graph diagram.Reader) ([]Violation, error) {
	// Map of bucket -> node keys carrying the label, in insertion order
	seen := make(map[labelGroup][]string)
	var order []labelGroup

	for _, node := range graph.Nodes() {
		if node.IsGhost() || unnamedCloud(node) {
			continue
		}
		if c.Category != "" && node.Category != c.Category {
			continue
		}
		group := labelGroup{label: node.Name()}
		if c.Scope == ScopeCategory {
			group.category = node.Category
		}
		if _, ok := seen[group]; !ok {
			order = append(order, group)
		}
		seen[group] = append(seen[group], node.Key)
	}

	var violations []Violation
	for _, group := range order {
		keys := seen[group]
		for _, key := range keys[1:] {
			msg := fmt.Sprintf("Duplicate label '%s' (also used by node %s)", group.label, keys[0])
			if group.category != "" {
				msg = fmt.Sprintf("Duplicate label '%s' within category '%s' (also used by node %s)",
					group.label, group.category, keys[0])
			}
			violations = append(violations, Violation{
				Type:       UniquenessViolation,
				Severity:   Error,
				NodeKey:    key,
				Constraint: c.Name(),
				Message:    msg,
				Details: map[string]any{
					"label":          group.label,
					"duplicate_of":   keys[0],
					"all_duplicates": keys,
				},
			})
		}
	}

	return violations, nil
}

// UniqueLinkConstraint ensures only one link of a category exists between two
// nodes. Repeated influences are harmless to the run but clutter the diagram.
type UniqueLinkConstraint struct {
	Category diagram.LinkCategory
}

// Name returns a human-readable name for this constraint
func (c *UniqueLinkConstraint) Name() string {
	return fmt.Sprintf("UniqueLink(%s)", c.Category)
}

// Validate checks that no duplicate links exist between node pairs
func (c *UniqueLinkConstraint) Validate(graph diagram.Reader) ([]Violation, error) {
	var violations []Violation

	// Map of (from, to) -> first link key
	first := make(map[[2]string]string)

	for _, link := range graph.Links() {
		if link.Category != c.Category {
			continue
		}
		pair := [2]string{link.From, link.To}
		original, dup := first[pair]
		if !dup {
			first[pair] = link.Key
			continue
		}
		violations = append(violations, Violation{
			Type:       UniquenessViolation,
			Severity:   Warning,
			LinkKey:    link.Key,
			Constraint: c.Name(),
			Message: fmt.Sprintf("Duplicate %s link %s->%s (link %s already exists)",
				c.Category, link.From, link.To, original),
			Details: map[string]any{
				"from":         link.From,
				"to":           link.To,
				"duplicate_of": original,
			},
		})
	}

	return violations, nil
}
