// Package project reads and writes the diagram exchange document: the
// editor's node and link arrays plus the simulation parameters saved with
// them.
package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dd0wney/cluso-stockflow/pkg/params"
	"github.com/dd0wney/cluso-stockflow/pkg/translate"
)

// ModelClass and LabelKeysProperty are written into every document header.
const (
	ModelClass        = "GraphLinksModel"
	LabelKeysProperty = "labelKeys"
)

// Simulation parameter defaults applied when a document has no
// simulationParameters block.
const (
	DefaultStartTime = 0
	DefaultEndTime   = 10
	DefaultDT        = 0.1
	DefaultMethod    = translate.MethodRK4
)

// ErrInvalidDocument is wrapped by every decoding and loading error caused by
// the document content.
var ErrInvalidDocument = errors.New("project: invalid document")

// Key is a node or link key. Documents written by the editor may use JSON
// numbers; they are kept in their decimal text form.
type Key string

// UnmarshalJSON accepts a JSON string or number.
func (k *Key) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*k = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*k = Key(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("key %s is neither a string nor a number", data)
	}
	*k = Key(n.String())
	return nil
}

// Value is a simulation setting as saved. The editor writes numbers but a
// hand edited file may hold strings or null; the text is kept as is so the
// parameter validator can report it.
type Value string

// UnmarshalJSON accepts a JSON number, string or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = Value(n.String())
	}
	return nil
}

// MarshalJSON writes finite numbers as JSON numbers and anything else,
// Infinity and NaN included, as a string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v == "" {
		return []byte("null"), nil
	}
	if f, err := strconv.ParseFloat(string(v), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return json.Marshal(f)
	}
	return json.Marshal(string(v))
}

// NodeData is one entry of nodeDataArray.
type NodeData struct {
	Key      Key    `json:"key"`
	Category string `json:"category"`
	Label    string `json:"label,omitempty"`
	Equation string `json:"equation,omitempty"`
	// BiflowAllowed is only written for valves. Absent means allowed.
	BiflowAllowed *bool     `json:"biflowAllowed,omitempty"`
	Position      *Position `json:"position,omitempty"`

	// Checkbox is the legacy table toggle. On a valve, checked means uniflow.
	Checkbox *bool `json:"checkbox,omitempty"`
	// Loc is the legacy "x y" position string.
	Loc string `json:"loc,omitempty"`
}

// Position is a saved node position.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LinkData is one entry of linkDataArray.
type LinkData struct {
	Key       Key     `json:"key,omitempty"`
	Category  string  `json:"category"`
	From      Key     `json:"from"`
	To        Key     `json:"to"`
	LabelKeys []Key   `json:"labelKeys,omitempty"`
	Curviness float64 `json:"curviness,omitempty"`
}

// SimulationParameters is the run settings block.
type SimulationParameters struct {
	StartTime         Value  `json:"startTime"`
	EndTime           Value  `json:"endTime"`
	DT                Value  `json:"dt"`
	IntegrationMethod string `json:"integrationMethod"`
}

// DefaultParameters returns the settings assumed for a document without a
// simulationParameters block.
func DefaultParameters() SimulationParameters {
	raw := params.RawFrom(DefaultStartTime, DefaultEndTime, DefaultDT, DefaultMethod)
	return SimulationParameters{
		StartTime:         Value(raw.Start),
		EndTime:           Value(raw.End),
		DT:                Value(raw.DT),
		IntegrationMethod: raw.Method,
	}
}

// ParametersFrom converts validated settings into a saved block.
func ParametersFrom(p params.Parameters) SimulationParameters {
	raw := params.RawFrom(p.Start, p.End, p.DT, params.ResolveMethod(p.Method))
	return SimulationParameters{
		StartTime:         Value(raw.Start),
		EndTime:           Value(raw.End),
		DT:                Value(raw.DT),
		IntegrationMethod: raw.Method,
	}
}

// Raw returns the block in the form the parameter validator consumes.
func (sp SimulationParameters) Raw() params.Raw {
	return params.Raw{
		Start:  string(sp.StartTime),
		End:    string(sp.EndTime),
		DT:     string(sp.DT),
		Method: sp.IntegrationMethod,
	}
}

// Document is a saved project.
type Document struct {
	Class                 string                `json:"class"`
	LinkLabelKeysProperty string                `json:"linkLabelKeysProperty"`
	NodeDataArray         []NodeData            `json:"nodeDataArray"`
	LinkDataArray         []LinkData            `json:"linkDataArray"`
	SimulationParameters  *SimulationParameters `json:"simulationParameters,omitempty"`
}

// New returns an empty document with the standard header.
func New() *Document {
	return &Document{
		Class:                 ModelClass,
		LinkLabelKeysProperty: LabelKeysProperty,
		NodeDataArray:         []NodeData{},
		LinkDataArray:         []LinkData{},
	}
}

// Parameters returns the saved run settings, or the defaults when the
// document has none.
func (d *Document) Parameters() params.Raw {
	if d.SimulationParameters == nil {
		return DefaultParameters().Raw()
	}
	return d.SimulationParameters.Raw()
}
