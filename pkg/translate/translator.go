package translate

import (
	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
	"github.com/dd0wney/cluso-stockflow/pkg/logging"
)

// Translator builds EngineModels from diagrams.
type Translator struct {
	logger logging.Logger
}

// NewTranslator returns a translator logging to logger (nil for none).
func NewTranslator(logger logging.Logger) *Translator {
	return &Translator{logger: logging.OrNop(logger).With(logging.Component("translate"))}
}

// Translate projects g onto an EngineModel. Ghosts contribute nothing of
// their own: a ghost valve or ghost stock stands for its canonical node.
// Time fields are left zero for the caller to fill.
//
// The diagram must already satisfy the editor's invariants. A flow without a
// resolvable valve, a valve labelling two flows, a missing or mistyped flow
// endpoint, or two real nodes sharing a name yields a *CorruptionError.
func (t *Translator) Translate(g diagram.Reader) (*EngineModel, error) {
	m := newEngineModel()
	owner := make(map[string]string) // canonical name -> node key

	for _, n := range g.Nodes() {
		if n.IsGhost() || n.Category == diagram.Cloud {
			continue
		}
		if prev, dup := owner[n.Name()]; dup {
			return nil, corruptNode(n.Key, "name %q already used by node %s", n.Name(), prev)
		}
		owner[n.Name()] = n.Key

		switch n.Category {
		case diagram.Stock:
			m.Stocks[n.Name()] = &Stock{
				Equation: n.Equation,
				Inflows:  make(map[string]string),
				Outflows: make(map[string]string),
			}
		case diagram.Variable:
			m.Converters[n.Name()] = n.Equation
		}
	}

	labelled := make(map[string]string) // valve key -> flow link key
	for _, l := range g.Links() {
		if l.Category != diagram.Flow {
			continue
		}
		valve, err := resolveValve(g, l)
		if err != nil {
			return nil, err
		}
		from, err := resolveEndpoint(g, l, l.From)
		if err != nil {
			return nil, err
		}
		to, err := resolveEndpoint(g, l, l.To)
		if err != nil {
			return nil, err
		}

		if prev, dup := labelled[l.ValveKey()]; dup {
			return nil, corruptLink(l.Key, "valve %s already labels flow %s", l.ValveKey(), prev)
		}
		labelled[l.ValveKey()] = l.Key

		// A ghost valve draws the same flow elsewhere in the diagram, so both
		// links book onto the one named flow.
		name := valve.Name()
		flow, seen := m.Flows[name]
		if !seen {
			flow = &Flow{Equation: valve.Equation, Biflow: valve.BiflowAllowed}
			m.Flows[name] = flow
		}
		if from != "" {
			m.Stocks[from].Outflows[name] = valve.Equation
			if flow.From == "" {
				flow.From = from
			}
		}
		if to != "" {
			m.Stocks[to].Inflows[name] = valve.Equation
			if flow.To == "" {
				flow.To = to
			}
		}
	}

	t.logger.Debug("translated diagram",
		logging.Int("stocks", len(m.Stocks)),
		logging.Int("flows", len(m.Flows)),
		logging.Int("converters", len(m.Converters)))
	return m, nil
}

// resolveValve returns the real valve owning flow l.
func resolveValve(g diagram.Reader, l *diagram.Link) (*diagram.Node, error) {
	valve, ok := g.Node(l.ValveKey())
	if !ok || valve.Category != diagram.Valve {
		return nil, corruptLink(l.Key, "flow has no valve")
	}
	if !valve.IsGhost() {
		return valve, nil
	}
	canonical := diagram.FindReal(g, valve.Name(), diagram.Valve)
	if canonical == nil {
		return nil, corruptLink(l.Key, "ghost valve %q has no canonical valve", valve.Label())
	}
	return canonical, nil
}

// resolveEndpoint returns the stock name at key, or "" for a cloud.
func resolveEndpoint(g diagram.Reader, l *diagram.Link, key string) (string, error) {
	n, ok := g.Node(key)
	if !ok {
		return "", corruptLink(l.Key, "endpoint %s does not exist", key)
	}
	switch n.Category {
	case diagram.Cloud:
		return "", nil
	case diagram.Stock:
		if !n.IsGhost() {
			return n.Name(), nil
		}
		if diagram.FindReal(g, n.Name(), diagram.Stock) == nil {
			return "", corruptLink(l.Key, "ghost stock %q has no canonical stock", n.Label())
		}
		return n.Name(), nil
	default:
		return "", corruptLink(l.Key, "endpoint %s is a %s", key, n.Category)
	}
}
