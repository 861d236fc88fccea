package params

import (
	"slices"
	"testing"

	"github.com/dd0wney/cluso-stockflow/pkg/issues"
	"github.com/dd0wney/cluso-stockflow/pkg/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		raw  Raw
		want []issues.Kind
	}{
		{"valid", Raw{"0", "10", "0.1", "rk4"}, nil},
		{"zero step", Raw{"0", "1", "0", ""}, []issues.Kind{issues.NonPositiveStep}},
		{"negative step", Raw{"0", "1", "-0.5", ""}, []issues.Kind{issues.NonPositiveStep}},
		{"step exceeds duration", Raw{"0", "1", "2", ""}, []issues.Kind{issues.OrderingViolation}},
		{"step equals duration", Raw{"0", "1", "1", ""}, nil},
		{"end before start", Raw{"5", "1", "0.1", ""}, []issues.Kind{issues.OrderingViolation}},
		{"end equals start", Raw{"1", "1", "0.1", ""}, []issues.Kind{issues.OrderingViolation}},
		{"high step count", Raw{"0", "1000", "1", ""}, []issues.Kind{issues.HighStepCount}},
		{"just below threshold", Raw{"0", "999", "1", ""}, nil},
		{"non numeric", Raw{"zero", "10", "x", ""}, []issues.Kind{issues.NonNumericParameter, issues.NonNumericParameter}},
		{"empty", Raw{"", " ", "", ""}, []issues.Kind{issues.NonNumericParameter, issues.NonNumericParameter, issues.NonNumericParameter}},
		{"nan and inf", Raw{"NaN", "Inf", "1", ""}, []issues.Kind{issues.NonNumericParameter, issues.NonNumericParameter}},
		{"all at once", Raw{"5", "1", "0", ""}, []issues.Kind{issues.OrderingViolation, issues.NonPositiveStep}},
		{"bad dt with bad order", Raw{"5", "1", "abc", ""}, []issues.Kind{issues.NonNumericParameter, issues.OrderingViolation}},
		{"whitespace tolerated", Raw{" 0 ", "10\n", "\t1", ""}, nil},
	}

	v := NewValidator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := v.Validate(tt.raw)
			if !slices.Equal(got.Kinds(), tt.want) && !(len(got) == 0 && len(tt.want) == 0) {
				t.Errorf("Validate(%+v) kinds = %v, want %v", tt.raw, got.Kinds(), tt.want)
			}
		})
	}
}

func TestValidateParsesValues(t *testing.T) {
	p, list := NewValidator(nil).Validate(Raw{Start: "1", End: "2.5e1", DT: "0.25", Method: "EULER"})
	require.Empty(t, list)
	assert.Equal(t, Parameters{Start: 1, End: 25, DT: 0.25, Method: translate.MethodEuler}, p)
	assert.InDelta(t, 96, p.Steps(), 1e-9)
}

func TestValidateSubjects(t *testing.T) {
	_, list := NewValidator(nil).Validate(Raw{Start: "a", End: "10", DT: "b"})
	require.Len(t, list, 2)
	assert.Equal(t, FieldStart, list[0].Subject)
	assert.Equal(t, FieldDT, list[1].Subject)
	assert.True(t, list.HasBlocking())
}

func TestHighStepThreshold(t *testing.T) {
	v := NewValidator(&Config{HighStepThreshold: 50})
	assert.Equal(t, float64(50), v.Threshold())

	_, list := v.Validate(Raw{Start: "0", End: "50", DT: "1"})
	require.Len(t, list, 1)
	assert.Equal(t, issues.HighStepCount, list[0].Kind)
	assert.False(t, list.HasBlocking())

	assert.Equal(t, float64(DefaultHighStepThreshold), NewValidator(&Config{}).Threshold())
}

func TestResolveMethod(t *testing.T) {
	for in, want := range map[string]string{
		"euler": translate.MethodEuler, "Euler": translate.MethodEuler, " EULER ": translate.MethodEuler,
		"rk4": translate.MethodRK4, "": translate.MethodRK4, "midpoint": translate.MethodRK4,
	} {
		assert.Equal(t, want, ResolveMethod(in), "ResolveMethod(%q)", in)
	}
}

func TestRawFrom(t *testing.T) {
	raw := RawFrom(0, 10, 0.1, "rk4")
	assert.Equal(t, Raw{Start: "0", End: "10", DT: "0.1", Method: "rk4"}, raw)
}
