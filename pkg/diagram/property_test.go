package diagram

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// edit is one randomly generated editor action.
type edit struct {
	Op     int
	Target int
	Other  int
	Label  string
}

var labelPool = []string{"a", "b", "c", "$a", "$b", "$z", "1", "", "flow1", "stock1"}

func genEdit() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 6),
		gen.IntRange(0, 15),
		gen.IntRange(0, 15),
		gen.OneConstOf(labelPool[0], labelPool[1], labelPool[2], labelPool[3], labelPool[4],
			labelPool[5], labelPool[6], labelPool[7], labelPool[8], labelPool[9]),
	).Map(func(v []interface{}) edit {
		return edit{Op: v[0].(int), Target: v[1].(int), Other: v[2].(int), Label: v[3].(string)}
	})
}

// apply performs e against the store, ignoring rejected edits.
func apply(s *Store, e edit) {
	_ = s.Update("edit", func(tx *Tx) error {
		nodes := tx.Graph().Nodes()
		pick := func(i int) string {
			if len(nodes) == 0 {
				return ""
			}
			return nodes[i%len(nodes)].Key
		}
		var err error
		switch e.Op {
		case 0:
			_, err = tx.AddNode(Stock, Point{})
		case 1:
			_, err = tx.AddNode(Variable, Point{})
		case 2:
			_, err = tx.AddNode(Cloud, Point{})
		case 3:
			_, _, err = tx.AddFlow(pick(e.Target), pick(e.Other), Point{})
		case 4:
			_, err = tx.AddInfluence(pick(e.Target), pick(e.Other))
		case 5:
			err = tx.Rename(pick(e.Target), e.Label)
		case 6:
			err = tx.RemoveNode(pick(e.Target))
		}
		return err
	})
}

func TestLabelInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("real labels stay unique, non-empty and non-numeric", prop.ForAll(
		func(edits []edit) bool {
			s := NewStore()
			for _, e := range edits {
				apply(s, e)
			}
			seen := make(map[string]bool)
			for _, n := range s.Graph().Nodes() {
				if n.IsGhost() {
					continue
				}
				if n.Name() == "" || IsNumeric(n.Name()) || seen[n.Name()] {
					return false
				}
				seen[n.Name()] = true
			}
			return true
		},
		gen.SliceOf(genEdit()),
	))

	properties.Property("committed graphs are structurally sound", prop.ForAll(
		func(edits []edit) bool {
			s := NewStore()
			for _, e := range edits {
				apply(s, e)
			}
			return CheckStructure(s.Graph()) == nil && !s.InTransaction()
		},
		gen.SliceOf(genEdit()),
	))

	properties.Property("every valve labels exactly one flow", prop.ForAll(
		func(edits []edit) bool {
			s := NewStore()
			for _, e := range edits {
				apply(s, e)
			}
			g := s.Graph()
			for _, n := range g.Nodes() {
				if n.Category == Valve && FlowOf(g, n.Key) == nil {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genEdit()),
	))

	properties.TestingRun(t)
}
