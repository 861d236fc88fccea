package diagram

import "testing"

// mustUpdate runs fn in a committed transaction and fails the test on error.
func mustUpdate(t *testing.T, s *Store, name string, fn func(tx *Tx) error) {
	t.Helper()
	if err := s.Update(name, fn); err != nil {
		t.Fatalf("%s: %v", name, err)
	}
}

// newPopulationStore builds:
//
//	cloud1 --flow1--> Population --flow2--> cloud2
//	birth rate -> flow1
func newPopulationStore(t *testing.T) (*Store, map[string]string) {
	t.Helper()
	s := NewStore()
	keys := make(map[string]string)
	mustUpdate(t, s, "build", func(tx *Tx) error {
		pop, err := tx.AddNode(Stock, Point{})
		if err != nil {
			return err
		}
		if err := tx.Rename(pop.Key, "Population"); err != nil {
			return err
		}
		src, _ := tx.AddNode(Cloud, Point{})
		sink, _ := tx.AddNode(Cloud, Point{})
		rate, _ := tx.AddNode(Variable, Point{})
		if err := tx.Rename(rate.Key, "birth rate"); err != nil {
			return err
		}
		in, inValve, err := tx.AddFlow(src.Key, pop.Key, Point{})
		if err != nil {
			return err
		}
		out, outValve, err := tx.AddFlow(pop.Key, sink.Key, Point{})
		if err != nil {
			return err
		}
		inf, err := tx.AddInfluence(rate.Key, inValve.Key)
		if err != nil {
			return err
		}
		keys["pop"], keys["src"], keys["sink"], keys["rate"] = pop.Key, src.Key, sink.Key, rate.Key
		keys["in"], keys["inValve"], keys["out"], keys["outValve"], keys["inf"] = in.Key, inValve.Key, out.Key, outValve.Key, inf.Key
		return nil
	})
	return s, keys
}
