// Package issues defines the user-facing problems reported by the influence
// check and the parameter validator.
package issues

import (
	"fmt"
	"strings"
)

// Class groups issue kinds by how they gate a run.
type Class int

const (
	// Structural issues come from the diagram and always block a run.
	Structural Class = iota
	// Parameter issues come from the simulation settings and always block.
	Parameter
	// Advisory issues block only until the caller overrides them.
	Advisory
)

func (c Class) String() string {
	switch c {
	case Structural:
		return "Structural"
	case Parameter:
		return "Parameter"
	case Advisory:
		return "Advisory"
	default:
		return "Unknown"
	}
}

// Kind identifies a specific problem.
type Kind int

const (
	MissingInfluence Kind = iota
	NonNumericParameter
	NonPositiveStep
	OrderingViolation
	HighStepCount
)

func (k Kind) String() string {
	switch k {
	case MissingInfluence:
		return "MissingInfluence"
	case NonNumericParameter:
		return "NonNumericParameter"
	case NonPositiveStep:
		return "NonPositiveStep"
	case OrderingViolation:
		return "OrderingViolation"
	case HighStepCount:
		return "HighStepCount"
	default:
		return "Unknown"
	}
}

// Class returns the class a kind belongs to.
func (k Kind) Class() Class {
	switch k {
	case MissingInfluence:
		return Structural
	case HighStepCount:
		return Advisory
	default:
		return Parameter
	}
}

// MarshalText renders the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Issue is one reported problem.
type Issue struct {
	Kind Kind `json:"kind"`
	// Subject is what the issue is about: a valve label for structural
	// issues, a parameter field for parameter issues.
	Subject string `json:"subject,omitempty"`
	// Names lists the identifiers involved, e.g. the missing influences.
	Names   []string `json:"names,omitempty"`
	Message string   `json:"message"`
}

// Class returns the issue's class.
func (i Issue) Class() Class { return i.Kind.Class() }

// Blocking reports whether the issue stops a run regardless of overrides.
func (i Issue) Blocking() bool { return i.Class() != Advisory }

func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(i.Kind.String())
	if i.Subject != "" {
		fmt.Fprintf(&b, " [%s]", i.Subject)
	}
	if i.Message != "" {
		b.WriteString(": ")
		b.WriteString(i.Message)
	}
	return b.String()
}

// List is an ordered collection of issues.
type List []Issue

// HasBlocking reports whether any issue blocks a run outright.
func (l List) HasBlocking() bool {
	for _, i := range l {
		if i.Blocking() {
			return true
		}
	}
	return false
}

// OfClass returns the issues of class c, in order.
func (l List) OfClass(c Class) List {
	var out List
	for _, i := range l {
		if i.Class() == c {
			out = append(out, i)
		}
	}
	return out
}

// OfKind returns the issues of kind k, in order.
func (l List) OfKind(k Kind) List {
	var out List
	for _, i := range l {
		if i.Kind == k {
			out = append(out, i)
		}
	}
	return out
}

// Kinds returns the kind of each issue, in order.
func (l List) Kinds() []Kind {
	out := make([]Kind, len(l))
	for n, i := range l {
		out[n] = i.Kind
	}
	return out
}
