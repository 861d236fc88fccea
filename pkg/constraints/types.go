package constraints

import (
	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
)

// Severity indicates the importance of a violation
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// ViolationType categorizes the type of constraint violation
type ViolationType int

const (
	MissingEquation ViolationType = iota
	InvalidLabel
	CardinalityViolation
	InvalidStructure
	UniquenessViolation
	OrphanGhost
	MissingInfluenceLink
)

func (vt ViolationType) String() string {
	switch vt {
	case MissingEquation:
		return "MissingEquation"
	case InvalidLabel:
		return "InvalidLabel"
	case CardinalityViolation:
		return "CardinalityViolation"
	case InvalidStructure:
		return "InvalidStructure"
	case UniquenessViolation:
		return "UniquenessViolation"
	case OrphanGhost:
		return "OrphanGhost"
	case MissingInfluenceLink:
		return "MissingInfluence"
	default:
		return "Unknown"
	}
}

// Violation represents a constraint violation
type Violation struct {
	Type       ViolationType
	Severity   Severity
	NodeKey    string
	LinkKey    string
	Constraint string
	Message    string
	Details    map[string]any
}

// Constraint is the interface that all constraint types must implement.
// Constraints only read the diagram; they never repair it.
type Constraint interface {
	// Validate checks the constraint against the graph
	// Returns a list of violations (empty if valid)
	Validate(graph diagram.Reader) ([]Violation, error)

	// Name returns a human-readable name for the constraint
	Name() string
}
