// Package params validates the simulation settings of a run.
package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-stockflow/pkg/issues"
	"github.com/dd0wney/cluso-stockflow/pkg/translate"
)

// DefaultHighStepThreshold is the step count from which a run needs an
// explicit override.
const DefaultHighStepThreshold = 1000

// Field names used as issue subjects.
const (
	FieldStart = "startTime"
	FieldEnd   = "endTime"
	FieldDT    = "dt"
)

// Raw holds the settings as the user typed them.
type Raw struct {
	Start  string `json:"startTime" yaml:"start_time"`
	End    string `json:"endTime" yaml:"end_time"`
	DT     string `json:"dt" yaml:"dt"`
	Method string `json:"integrationMethod" yaml:"integration_method"`
}

// RawFrom formats numeric settings, as stored in a project document.
func RawFrom(start, end, dt float64, method string) Raw {
	format := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
	return Raw{Start: format(start), End: format(end), DT: format(dt), Method: method}
}

// Parameters are validated settings.
type Parameters struct {
	Start  float64 `json:"startTime"`
	End    float64 `json:"endTime"`
	DT     float64 `json:"dt"`
	Method string  `json:"integrationMethod"`
}

// Steps returns the number of integration steps, (end - start) / dt.
func (p Parameters) Steps() float64 {
	return (p.End - p.Start) / p.DT
}

// ResolveMethod maps a method name onto the integrator's methods: "euler" in
// any case selects Euler, anything else RK4.
func ResolveMethod(name string) string {
	if strings.EqualFold(strings.TrimSpace(name), translate.MethodEuler) {
		return translate.MethodEuler
	}
	return translate.MethodRK4
}

// Config configures a Validator.
type Config struct {
	// HighStepThreshold is the step count at which HighStepCount is raised.
	HighStepThreshold float64 `yaml:"high_step_threshold" validate:"gt=0"`
}

// DefaultConfig returns the editor's threshold.
func DefaultConfig() *Config {
	return &Config{HighStepThreshold: DefaultHighStepThreshold}
}

// Validator checks run settings.
type Validator struct {
	threshold float64
}

// NewValidator returns a validator. A nil config selects DefaultConfig.
func NewValidator(config *Config) *Validator {
	if config == nil || config.HighStepThreshold <= 0 {
		config = DefaultConfig()
	}
	return &Validator{threshold: config.HighStepThreshold}
}

// Threshold returns the high step count threshold.
func (v *Validator) Threshold() float64 { return v.threshold }

// Validate parses raw and evaluates every rule, returning all issues found.
// The returned Parameters are only meaningful when no blocking issue was
// reported.
//
// Rules: each field is a finite number; end > start; dt > 0; dt does not
// exceed end - start; and (end - start) / dt below the threshold, else a
// HighStepCount advisory.
func (v *Validator) Validate(raw Raw) (Parameters, issues.List) {
	var list issues.List
	p := Parameters{Method: ResolveMethod(raw.Method)}

	parse := func(field, text string, dst *float64) bool {
		f, err := parseFinite(text)
		if err != nil {
			list = append(list, issues.Issue{
				Kind:    issues.NonNumericParameter,
				Subject: field,
				Message: fmt.Sprintf("%s %q is not a number", field, text),
			})
			return false
		}
		*dst = f
		return true
	}
	startOK := parse(FieldStart, raw.Start, &p.Start)
	endOK := parse(FieldEnd, raw.End, &p.End)
	dtOK := parse(FieldDT, raw.DT, &p.DT)

	ordered := startOK && endOK && p.End > p.Start
	if startOK && endOK && !ordered {
		list = append(list, issues.Issue{
			Kind:    issues.OrderingViolation,
			Subject: FieldEnd,
			Message: fmt.Sprintf("end time %g must be greater than start time %g", p.End, p.Start),
		})
	}
	positive := dtOK && p.DT > 0
	if dtOK && !positive {
		list = append(list, issues.Issue{
			Kind:    issues.NonPositiveStep,
			Subject: FieldDT,
			Message: fmt.Sprintf("dt %g must be greater than zero", p.DT),
		})
	}
	if ordered && positive && p.DT > p.End-p.Start {
		list = append(list, issues.Issue{
			Kind:    issues.OrderingViolation,
			Subject: FieldDT,
			Message: fmt.Sprintf("dt %g exceeds the run duration %g", p.DT, p.End-p.Start),
		})
	}

	if ordered && positive {
		if steps := p.Steps(); steps >= v.threshold {
			list = append(list, issues.Issue{
				Kind:    issues.HighStepCount,
				Subject: FieldDT,
				Message: fmt.Sprintf("the run takes %.0f steps, at least %.0f needs confirmation", steps, v.threshold),
			})
		}
	}

	return p, list
}

func parseFinite(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, strconv.ErrSyntax
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}
