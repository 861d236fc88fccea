package ghost

import (
	"slices"
	"testing"

	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func node(key string, category diagram.Category, label string) diagram.Node {
	return diagram.Node{Key: key, Category: category, Ident: diagram.ParseIdentity(label)}
}

// buildGraph loads nodes and links through a transaction so the result is
// structurally valid.
func buildGraph(t *testing.T, nodes []diagram.Node, links []diagram.Link) *diagram.Graph {
	t.Helper()
	s := diagram.NewStore()
	err := s.Update("load", func(tx *diagram.Tx) error {
		for _, n := range nodes {
			if _, err := tx.InsertNode(n); err != nil {
				return err
			}
		}
		for _, l := range links {
			if _, err := tx.InsertLink(l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return s.Graph().Clone()
}

func TestReconcile(t *testing.T) {
	t.Run("valid ghosts survive", func(t *testing.T) {
		g := buildGraph(t, []diagram.Node{
			node("s", diagram.Stock, "Population"),
			node("gs", diagram.Stock, "$Population"),
			node("v", diagram.Variable, "rate"),
			node("gv", diagram.Variable, "$rate"),
		}, nil)
		report := NewResolver(nil).Reconcile(g)
		if !report.Empty() || report.Passes != 1 {
			t.Errorf("report = %+v", report)
		}
		if g.NodeCount() != 4 {
			t.Errorf("NodeCount = %d", g.NodeCount())
		}
	})

	t.Run("orphans and their links go", func(t *testing.T) {
		g := buildGraph(t, []diagram.Node{
			node("gs", diagram.Stock, "$Population"),
			node("v", diagram.Variable, "rate"),
			node("w", diagram.Variable, "other"),
			node("gw", diagram.Variable, "$gone"),
		}, []diagram.Link{
			{Key: "i1", Category: diagram.Influence, From: "gs", To: "v"},
			{Key: "i2", Category: diagram.Influence, From: "gw", To: "w"},
			{Key: "i3", Category: diagram.Influence, From: "v", To: "w"},
		})
		report := NewResolver(nil).Reconcile(g)

		slices.Sort(report.RemovedNodes)
		slices.Sort(report.RemovedLinks)
		if !slices.Equal(report.RemovedNodes, []string{"gs", "gw"}) {
			t.Errorf("RemovedNodes = %v", report.RemovedNodes)
		}
		if !slices.Equal(report.RemovedLinks, []string{"i1", "i2"}) {
			t.Errorf("RemovedLinks = %v", report.RemovedLinks)
		}
		if _, ok := g.Link("i3"); !ok {
			t.Error("link between real nodes removed")
		}
	})

	t.Run("category must match", func(t *testing.T) {
		g := buildGraph(t, []diagram.Node{
			node("v", diagram.Variable, "Population"),
			node("gs", diagram.Stock, "$Population"),
		}, nil)
		report := NewResolver(nil).Reconcile(g)
		if !slices.Equal(report.RemovedNodes, []string{"gs"}) {
			t.Errorf("RemovedNodes = %v", report.RemovedNodes)
		}
	})

	t.Run("ghost valve takes its flow", func(t *testing.T) {
		g := buildGraph(t, []diagram.Node{
			node("c1", diagram.Cloud, "c1"),
			node("s", diagram.Stock, "S"),
			node("gvalve", diagram.Valve, "$flow9"),
		}, []diagram.Link{
			{Key: "f", Category: diagram.Flow, From: "c1", To: "s", LabelKeys: []string{"gvalve"}},
		})
		report := NewResolver(nil).Reconcile(g)
		if !slices.Equal(report.RemovedLinks, []string{"f"}) {
			t.Errorf("RemovedLinks = %v", report.RemovedLinks)
		}
		if g.LinkCount() != 0 || g.NodeCount() != 2 {
			t.Errorf("graph left with %d nodes, %d links", g.NodeCount(), g.LinkCount())
		}
		if err := diagram.CheckStructure(g); err != nil {
			t.Errorf("CheckStructure = %v", err)
		}
	})

	t.Run("flow into an orphan takes its valve", func(t *testing.T) {
		g := buildGraph(t, []diagram.Node{
			node("c1", diagram.Cloud, "c1"),
			node("gs", diagram.Stock, "$S"),
			node("v", diagram.Valve, "flow1"),
			node("k", diagram.Variable, "k"),
		}, []diagram.Link{
			{Key: "f", Category: diagram.Flow, From: "c1", To: "gs", LabelKeys: []string{"v"}},
			{Key: "i1", Category: diagram.Influence, From: "k", To: "v"},
		})
		report := NewResolver(nil).Reconcile(g)

		slices.Sort(report.RemovedNodes)
		slices.Sort(report.RemovedLinks)
		if !slices.Equal(report.RemovedNodes, []string{"gs", "v"}) {
			t.Errorf("RemovedNodes = %v", report.RemovedNodes)
		}
		if !slices.Equal(report.RemovedLinks, []string{"f", "i1"}) {
			t.Errorf("RemovedLinks = %v", report.RemovedLinks)
		}
		if g.NodeCount() != 2 || g.LinkCount() != 0 {
			t.Errorf("graph left with %d nodes, %d links", g.NodeCount(), g.LinkCount())
		}
	})

	t.Run("clouds are never ghosts", func(t *testing.T) {
		g := buildGraph(t, []diagram.Node{node("c", diagram.Cloud, "$c")}, nil)
		if report := NewResolver(nil).Reconcile(g); !report.Empty() {
			t.Errorf("report = %+v", report)
		}
	})
}

func TestOrphans(t *testing.T) {
	g := buildGraph(t, []diagram.Node{
		node("s", diagram.Stock, "A"),
		node("g1", diagram.Stock, "$A"),
		node("g2", diagram.Stock, "$B"),
	}, nil)
	if got := Orphans(g); !slices.Equal(got, []string{"g2"}) {
		t.Errorf("Orphans = %v", got)
	}
	if g.NodeCount() != 3 {
		t.Error("Orphans mutated the graph")
	}
}

func TestReconcileIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	names := []string{"a", "b", "c"}
	categories := []diagram.Category{diagram.Stock, diagram.Variable}

	properties.Property("second reconcile removes nothing and no orphan or flowless valve survives", prop.ForAll(
		func(realMask, ghostMask []int) bool {
			s := diagram.NewStore()
			_ = s.Update("load", func(tx *diagram.Tx) error {
				seen := map[string]bool{}
				for n, m := range realMask {
					name := names[m%len(names)]
					if seen[name] {
						continue
					}
					seen[name] = true
					tx.InsertNode(node("r"+string(rune('0'+n)), categories[m%len(categories)], name))
				}
				var keys []string
				for n, m := range ghostMask {
					key := "g" + string(rune('0'+n))
					tx.InsertNode(node(key, categories[(m/3)%len(categories)], "$"+names[m%len(names)]))
					keys = append(keys, key)
				}
				for n := 1; n < len(keys); n++ {
					tx.AddInfluence(keys[n-1], keys[n])
				}
				// Flows between a cloud and the ghost stocks; their valves
				// must go when the ghost does.
				tx.InsertNode(node("c", diagram.Cloud, "c"))
				for n, key := range keys {
					if n%2 == 0 {
						tx.AddFlow("c", key, diagram.Point{})
					} else {
						tx.AddFlow(key, "c", diagram.Point{})
					}
				}
				return nil
			})

			g := s.Graph().Clone()
			r := NewResolver(nil)
			r.Reconcile(g)
			second := r.Reconcile(g)
			for _, n := range g.Nodes() {
				if n.Category == diagram.Valve && diagram.FlowOf(g, n.Key) == nil {
					return false
				}
			}
			return second.Empty() && len(Orphans(g)) == 0 && diagram.CheckStructure(g) == nil
		},
		gen.SliceOfN(4, gen.IntRange(0, 5)),
		gen.SliceOfN(6, gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}
