package constraints

import (
	"testing"

	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
)

// graphBuilder collects nodes and links for a test diagram.
type graphBuilder struct {
	nodes []diagram.Node
	links []diagram.Link
}

func (b *graphBuilder) node(key string, category diagram.Category, label, eq string) *graphBuilder {
	b.nodes = append(b.nodes, diagram.Node{
		Key:      key,
		Category: category,
		Ident:    diagram.ParseIdentity(label),
		Equation: eq,
	})
	return b
}

func (b *graphBuilder) flow(key, from, to, valve string) *graphBuilder {
	b.links = append(b.links, diagram.Link{Key: key, Category: diagram.Flow, From: from, To: to, LabelKeys: []string{valve}})
	return b
}

func (b *graphBuilder) influence(key, from, to string) *graphBuilder {
	b.links = append(b.links, diagram.Link{Key: key, Category: diagram.Influence, From: from, To: to})
	return b
}

// build loads the diagram through a transaction, so only structurally valid
// diagrams can be built. Use raw for anything else.
func (b *graphBuilder) build(t *testing.T) *diagram.Graph {
	t.Helper()
	s := diagram.NewStore()
	err := s.Update("setup", func(tx *diagram.Tx) error {
		for _, n := range b.nodes {
			if _, err := tx.InsertNode(n); err != nil {
				return err
			}
		}
		for _, l := range b.links {
			if _, err := tx.InsertLink(l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	return s.Graph()
}

// setupTestGraph returns the population diagram:
//
//	cloud --births--> Population
//	birth rate -> births valve (equation "birth rate * Population")
func setupTestGraph(t *testing.T) *diagram.Graph {
	t.Helper()
	return new(graphBuilder).
		node("c1", diagram.Cloud, "c1", "").
		node("s1", diagram.Stock, "Population", "100").
		node("v1", diagram.Variable, "birth rate", "0.03").
		node("valve1", diagram.Valve, "births", "birth rate * Population").
		flow("f1", "c1", "s1", "valve1").
		influence("i1", "v1", "valve1").
		influence("i2", "s1", "valve1").
		build(t)
}
