package constraints

import (
	"time"

	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
	"github.com/dd0wney/cluso-stockflow/pkg/equation"
)

// ValidationResult contains the results of validating a graph against constraints
type ValidationResult struct {
	Valid      bool        // True if no violations found
	Violations []Violation // List of all violations
	CheckedAt  time.Time   // When validation was performed
}

// GetViolationsBySeverity returns violations filtered by severity level
func (vr *ValidationResult) GetViolationsBySeverity(severity Severity) []Violation {
	filtered := make([]Violation, 0)
	for _, v := range vr.Violations {
		if v.Severity == severity {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// GetViolationsByType returns violations filtered by type
func (vr *ValidationResult) GetViolationsByType(violationType ViolationType) []Violation {
	filtered := make([]Violation, 0)
	for _, v := range vr.Violations {
		if v.Type == violationType {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// HasErrors reports whether any violation has Error severity
func (vr *ValidationResult) HasErrors() bool {
	for _, v := range vr.Violations {
		if v.Severity == Error {
			return true
		}
	}
	return false
}

// Validator manages a set of constraints and validates graphs against them
type Validator struct {
	constraints []Constraint
	now         func() time.Time
}

// NewValidator creates a new empty validator
func NewValidator() *Validator {
	return &Validator{
		constraints: make([]Constraint, 0),
		now:         time.Now,
	}
}

// NewDiagramValidator returns a validator loaded with the rules a stock and
// flow diagram must satisfy before it is translated.
func NewDiagramValidator(scanner *equation.Scanner) *Validator {
	v := NewValidator()
	v.AddConstraints([]Constraint{
		&LabelConstraint{},
		&UniqueLabelConstraint{Scope: ScopeGlobal},
		&EndpointConstraint{},
		&GhostConstraint{},
		&InfluenceConstraint{Scanner: scanner},
		&EquationConstraint{Category: diagram.Stock, Severity: Warning},
		&EquationConstraint{Category: diagram.Variable, Severity: Warning},
		&EquationConstraint{Category: diagram.Valve, Severity: Warning},
		&UniqueLinkConstraint{Category: diagram.Influence},
		&CardinalityConstraint{
			Category:     diagram.Cloud,
			LinkCategory: diagram.Flow,
			Direction:    Any,
			Min:          1,
			Severity:     Info,
		},
	})
	return v
}

// AddConstraint adds a constraint to the validator
func (v *Validator) AddConstraint(constraint Constraint) {
	v.constraints = append(v.constraints, constraint)
}

// AddConstraints adds multiple constraints to the validator
func (v *Validator) AddConstraints(constraints []Constraint) {
	v.constraints = append(v.constraints, constraints...)
}

// Validate runs all constraints against the graph and returns the results
func (v *Validator) Validate(graph diagram.Reader) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:      true,
		Violations: make([]Violation, 0),
		CheckedAt:  v.now(),
	}

	// Run each constraint
	for _, constraint := range v.constraints {
		violations, err := constraint.Validate(graph)
		if err != nil {
			return nil, err
		}

		if len(violations) > 0 {
			result.Valid = false
			result.Violations = append(result.Violations, violations...)
		}
	}

	return result, nil
}

// GetConstraints returns all constraints in the validator
func (v *Validator) GetConstraints() []Constraint {
	return v.constraints
}

// ClearConstraints removes all constraints from the validator
func (v *Validator) ClearConstraints() {
	v.constraints = make([]Constraint, 0)
}
