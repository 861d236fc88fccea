// Package translate projects a diagram onto the stock, flow and converter
// schema consumed by the integrator.
package translate

// Integration methods understood by the integrator.
const (
	MethodEuler = "euler"
	MethodRK4   = "rk4"
)

// Stock is an accumulator with its initial value and the rates feeding and
// draining it, keyed by flow name.
type Stock struct {
	Equation string            `json:"equation"`
	Inflows  map[string]string `json:"inflows"`
	Outflows map[string]string `json:"outflows"`
}

// Flow carries the direction flag of a flow alongside its rate. From and To
// name stocks; they are empty for cloud endpoints.
type Flow struct {
	Equation string `json:"equation"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	// Biflow is false for uniflows, whose rate the integrator clamps at zero.
	Biflow bool `json:"biflow"`
}

// EngineModel is one run's worth of model for the integrator. It is built
// fresh for every run and never edited afterwards.
type EngineModel struct {
	Stocks            map[string]*Stock `json:"stocks"`
	Converters        map[string]string `json:"converters"`
	Flows             map[string]*Flow  `json:"flows"`
	StartTime         float64           `json:"start_time"`
	EndTime           float64           `json:"end_time"`
	DT                float64           `json:"dt"`
	IntegrationMethod string            `json:"integration_method"`
}

func newEngineModel() *EngineModel {
	return &EngineModel{
		Stocks:     make(map[string]*Stock),
		Converters: make(map[string]string),
		Flows:      make(map[string]*Flow),
	}
}

// Uniflows returns the names of the flows restricted to non-negative rates.
func (m *EngineModel) Uniflows() []string {
	var out []string
	for name, f := range m.Flows {
		if !f.Biflow {
			out = append(out, name)
		}
	}
	return out
}
