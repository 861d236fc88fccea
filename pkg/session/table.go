package session

import "github.com/dd0wney/cluso-stockflow/pkg/diagram"

// RowKind is the kind of quantity a table row edits.
type RowKind string

const (
	RowStock    RowKind = "stock"
	RowVariable RowKind = "variable"
	RowFlow     RowKind = "flow"
)

// Row is one editable line of the equation table.
type Row struct {
	Key      string  `json:"key"`
	Kind     RowKind `json:"kind"`
	Name     string  `json:"name"`
	Equation string  `json:"equation"`
	// Biflow is only meaningful for flow rows.
	Biflow bool `json:"biflow,omitempty"`
}

// HasDirection reports whether the row carries a direction toggle.
func (r Row) HasDirection() bool { return r.Kind == RowFlow }

// EquationTable lists every real stock, variable and valve in diagram order.
// Valves are shown as the flows they name.
type EquationTable struct {
	Rows []Row `json:"rows"`
}

// BuildTable derives the equation table from g.
func BuildTable(g diagram.Reader) EquationTable {
	var t EquationTable
	for _, n := range g.Nodes() {
		if n.IsGhost() {
			continue
		}
		var kind RowKind
		switch n.Category {
		case diagram.Stock:
			kind = RowStock
		case diagram.Variable:
			kind = RowVariable
		case diagram.Valve:
			kind = RowFlow
		default:
			continue
		}
		row := Row{Key: n.Key, Kind: kind, Name: n.Name(), Equation: n.Equation}
		if kind == RowFlow {
			row.Biflow = n.BiflowAllowed
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Lookup returns the row named name.
func (t EquationTable) Lookup(name string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Name == name {
			return r, true
		}
	}
	return Row{}, false
}
