package diagram

import (
	"errors"
	"slices"
	"testing"
)

func TestStoreBuild(t *testing.T) {
	s, keys := newPopulationStore(t)
	g := s.Graph()

	if g.NodeCount() != 6 {
		t.Errorf("NodeCount = %d, want 6", g.NodeCount())
	}
	if g.LinkCount() != 3 {
		t.Errorf("LinkCount = %d, want 3", g.LinkCount())
	}

	valve, ok := g.Node(keys["inValve"])
	if !ok {
		t.Fatal("valve not found")
	}
	if valve.Category != Valve || valve.Label() != "flow1" || valve.Key != "valve1" {
		t.Errorf("valve = %+v", valve)
	}
	if !valve.BiflowAllowed {
		t.Error("new flows should allow biflow")
	}
	if flow := FlowOf(g, valve.Key); flow == nil || flow.Key != keys["in"] {
		t.Errorf("FlowOf(valve1) = %v", flow)
	}
	if got := InfluencesInto(g, keys["inValve"]); len(got) != 1 || got[0].From != keys["rate"] {
		t.Errorf("InfluencesInto = %v", got)
	}
	if n := FindReal(g, "Population", Stock); n == nil || n.Key != keys["pop"] {
		t.Errorf("FindReal = %v", n)
	}
	if n := FindReal(g, "Population", Variable); n != nil {
		t.Errorf("FindReal with wrong category = %v", n)
	}
}

func TestNestedTransaction(t *testing.T) {
	s := NewStore()
	tx, err := s.Begin("outer")
	if err != nil {
		t.Fatal(err)
	}
	if !s.InTransaction() {
		t.Error("InTransaction should be true")
	}
	if _, err := s.Begin("inner"); !errors.Is(err, ErrNestedTransaction) {
		t.Errorf("nested Begin = %v, want ErrNestedTransaction", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}
	if s.InTransaction() {
		t.Error("InTransaction should be false after rollback")
	}
	if _, err := s.Begin("again"); err != nil {
		t.Errorf("Begin after rollback = %v", err)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := NewStore()

	tx, _ := s.Begin("add")
	if _, err := tx.AddNode(Stock, Point{}); err != nil {
		t.Fatal(err)
	}
	if s.Graph().NodeCount() != 0 {
		t.Error("uncommitted node visible in committed graph")
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if s.Graph().NodeCount() != 1 {
		t.Errorf("NodeCount after commit = %d", s.Graph().NodeCount())
	}
	if err := tx.Commit(); !errors.Is(err, ErrTransactionAlreadyEnded) {
		t.Errorf("second Commit = %v", err)
	}
	if err := tx.Rollback(); !errors.Is(err, ErrTransactionAlreadyEnded) {
		t.Errorf("Rollback after commit = %v", err)
	}
	if _, err := tx.AddNode(Stock, Point{}); !errors.Is(err, ErrTransactionNotActive) {
		t.Errorf("AddNode on ended tx = %v", err)
	}

	tx, _ = s.Begin("discard")
	if _, err := tx.AddNode(Variable, Point{}); err != nil {
		t.Fatal(err)
	}
	tx.Rollback()
	if err := tx.Rollback(); err != nil {
		t.Errorf("second Rollback = %v", err)
	}
	if s.Graph().NodeCount() != 1 {
		t.Errorf("rolled back node leaked: %d nodes", s.Graph().NodeCount())
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := NewStore()
	boom := errors.New("boom")
	err := s.Update("failing", func(tx *Tx) error {
		if _, err := tx.AddNode(Stock, Point{}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update = %v", err)
	}
	if s.Graph().NodeCount() != 0 || s.InTransaction() {
		t.Error("failed update left state behind")
	}
}

func TestCommitRejectsBrokenStructure(t *testing.T) {
	s, keys := newPopulationStore(t)
	tx, _ := s.Begin("raw delete")
	tx.Graph().DeleteNode(keys["pop"])

	err := tx.Commit()
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("Commit = %v, want ErrNodeNotFound", err)
	}
	if s.InTransaction() {
		t.Error("failed commit should end the transaction")
	}
	if _, ok := s.Graph().Node(keys["pop"]); !ok {
		t.Error("failed commit must not publish the working graph")
	}
}

func TestAddNodeKeys(t *testing.T) {
	s := NewStore()
	mustUpdate(t, s, "keys", func(tx *Tx) error {
		a, _ := tx.AddNode(Stock, Point{})
		b, _ := tx.AddNode(Stock, Point{})
		c, _ := tx.AddNode(Variable, Point{})
		if a.Key != "stock1" || b.Key != "stock2" || c.Key != "variable1" {
			t.Errorf("keys = %s %s %s", a.Key, b.Key, c.Key)
		}
		if a.Label() != a.Key {
			t.Errorf("label = %q, want key", a.Label())
		}
		return nil
	})

	mustUpdate(t, s, "squat", func(tx *Tx) error {
		return tx.Rename("stock1", "stock3")
	})
	mustUpdate(t, s, "skip", func(tx *Tx) error {
		n, _ := tx.AddNode(Stock, Point{})
		if n.Key != "stock4" {
			t.Errorf("key = %s, want stock4 (stock3 label is taken)", n.Key)
		}
		return nil
	})
}

func TestAddNodeRejects(t *testing.T) {
	s := NewStore()
	tx, _ := s.Begin("rejects")
	defer tx.Rollback()

	if _, err := tx.AddNode(Valve, Point{}); !errors.Is(err, ErrDirectValveEdit) {
		t.Errorf("AddNode(valve) = %v", err)
	}
	if _, err := tx.AddNode("pipe", Point{}); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("AddNode(pipe) = %v", err)
	}
}

func TestLinkTyping(t *testing.T) {
	s, keys := newPopulationStore(t)
	tx, _ := s.Begin("typing")
	defer tx.Rollback()

	tests := []struct {
		name string
		op   func() error
		want error
	}{
		{"flow from variable", func() error {
			_, _, err := tx.AddFlow(keys["rate"], keys["pop"], Point{})
			return err
		}, ErrInvalidFlowEndpoint},
		{"flow to itself", func() error {
			_, _, err := tx.AddFlow(keys["pop"], keys["pop"], Point{})
			return err
		}, ErrSelfLink},
		{"flow to missing", func() error {
			_, _, err := tx.AddFlow(keys["pop"], "nowhere", Point{})
			return err
		}, ErrNodeNotFound},
		{"influence into stock", func() error {
			_, err := tx.AddInfluence(keys["rate"], keys["pop"])
			return err
		}, ErrInvalidInfluenceTarget},
		{"influence into cloud", func() error {
			_, err := tx.AddInfluence(keys["rate"], keys["src"])
			return err
		}, ErrInvalidInfluenceTarget},
		{"influence into itself", func() error {
			_, err := tx.AddInfluence(keys["rate"], keys["rate"])
			return err
		}, ErrSelfLink},
		{"insert flow without valve", func() error {
			_, err := tx.InsertLink(Link{Category: Flow, From: keys["src"], To: keys["pop"]})
			return err
		}, ErrFlowWithoutValve},
		{"insert flow labelled by variable", func() error {
			_, err := tx.InsertLink(Link{Category: Flow, From: keys["src"], To: keys["pop"], LabelKeys: []string{keys["rate"]}})
			return err
		}, ErrFlowWithoutValve},
		{"insert duplicate link key", func() error {
			_, err := tx.InsertLink(Link{Key: keys["inf"], Category: Influence, From: keys["pop"], To: keys["rate"]})
			return err
		}, ErrDuplicateKey},
		{"insert unknown link category", func() error {
			_, err := tx.InsertLink(Link{Category: "pipe", From: keys["pop"], To: keys["rate"]})
			return err
		}, ErrUnknownCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := tx.AddInfluence(keys["pop"], keys["rate"]); err != nil {
		t.Errorf("influence from stock into variable: %v", err)
	}
	if _, err := tx.AddInfluence(keys["pop"], keys["outValve"]); err != nil {
		t.Errorf("influence from stock into valve: %v", err)
	}
}

func TestRemoveCascades(t *testing.T) {
	t.Run("stock takes its flows and their valves", func(t *testing.T) {
		s, keys := newPopulationStore(t)
		mustUpdate(t, s, "remove", func(tx *Tx) error { return tx.RemoveNode(keys["pop"]) })
		g := s.Graph()
		for _, k := range []string{keys["pop"], keys["inValve"], keys["outValve"]} {
			if _, ok := g.Node(k); ok {
				t.Errorf("node %s survived", k)
			}
		}
		if g.LinkCount() != 0 {
			t.Errorf("links left: %v", g.Links())
		}
		if _, ok := g.Node(keys["rate"]); !ok {
			t.Error("unrelated variable removed")
		}
	})

	t.Run("valve takes its flow", func(t *testing.T) {
		s, keys := newPopulationStore(t)
		mustUpdate(t, s, "remove", func(tx *Tx) error { return tx.RemoveNode(keys["inValve"]) })
		g := s.Graph()
		if _, ok := g.Link(keys["in"]); ok {
			t.Error("flow of removed valve survived")
		}
		if _, ok := g.Link(keys["inf"]); ok {
			t.Error("influence into removed valve survived")
		}
		if _, ok := g.Link(keys["out"]); !ok {
			t.Error("unrelated flow removed")
		}
	})

	t.Run("flow takes its valve", func(t *testing.T) {
		s, keys := newPopulationStore(t)
		mustUpdate(t, s, "remove", func(tx *Tx) error { return tx.RemoveLink(keys["out"]) })
		if _, ok := s.Graph().Node(keys["outValve"]); ok {
			t.Error("valve of removed flow survived")
		}
	})

	t.Run("graph reports the cascade", func(t *testing.T) {
		s, keys := newPopulationStore(t)
		g := s.Graph().Clone()
		gone := g.RemoveNode(keys["pop"])

		slices.Sort(gone.Nodes)
		slices.Sort(gone.Links)
		wantNodes := []string{keys["pop"], keys["inValve"], keys["outValve"]}
		wantLinks := []string{keys["in"], keys["out"], keys["inf"]}
		slices.Sort(wantNodes)
		slices.Sort(wantLinks)
		if !slices.Equal(gone.Nodes, wantNodes) {
			t.Errorf("Nodes = %v, want %v", gone.Nodes, wantNodes)
		}
		if !slices.Equal(gone.Links, wantLinks) {
			t.Errorf("Links = %v, want %v", gone.Links, wantLinks)
		}
		if again := g.RemoveNode(keys["pop"]); len(again.Nodes)+len(again.Links) != 0 {
			t.Errorf("second RemoveNode = %+v", again)
		}
		if err := CheckStructure(g); err != nil {
			t.Errorf("CheckStructure = %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		s, _ := newPopulationStore(t)
		err := s.Update("remove", func(tx *Tx) error { return tx.RemoveLink("link99") })
		if !errors.Is(err, ErrLinkNotFound) {
			t.Errorf("RemoveLink = %v", err)
		}
	})
}

func TestEditing(t *testing.T) {
	s, keys := newPopulationStore(t)

	mustUpdate(t, s, "ghost", func(tx *Tx) error {
		n, err := tx.AddNode(Stock, Point{X: 10})
		if err != nil {
			return err
		}
		keys["ghost"] = n.Key
		if err := tx.SetEquation(n.Key, "5"); err != nil {
			return err
		}
		return tx.Rename(n.Key, "$Population")
	})
	ghost, _ := s.Graph().Node(keys["ghost"])
	if !ghost.IsGhost() || ghost.Name() != "Population" || ghost.Equation != "" {
		t.Errorf("ghost = %+v", ghost)
	}

	tx, _ := s.Begin("edits")
	defer tx.Rollback()

	if err := tx.SetEquation(keys["ghost"], "1"); !errors.Is(err, ErrGhostHasNoData) {
		t.Errorf("SetEquation(ghost) = %v", err)
	}
	if err := tx.SetEquation(keys["src"], "1"); !errors.Is(err, ErrNoEquation) {
		t.Errorf("SetEquation(cloud) = %v", err)
	}
	if err := tx.SetBiflow(keys["pop"], false); !errors.Is(err, ErrNotAValve) {
		t.Errorf("SetBiflow(stock) = %v", err)
	}
	if err := tx.Rename(keys["rate"], "Population"); !errors.Is(err, ErrDuplicateLabel) {
		t.Errorf("Rename to duplicate = %v", err)
	}
	if err := tx.Rename("nope", "x"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Rename missing = %v", err)
	}
	if err := tx.SetBiflow(keys["inValve"], false); err != nil {
		t.Fatal(err)
	}
	if err := tx.Move(keys["pop"], Point{X: 1, Y: 2}); err != nil {
		t.Fatal(err)
	}
	if tx.Changes() != 2 {
		t.Errorf("Changes = %d, want 2", tx.Changes())
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	valve, _ := s.Graph().Node(keys["inValve"])
	if valve.BiflowAllowed {
		t.Error("SetBiflow(false) not committed")
	}
}

func TestInsertNode(t *testing.T) {
	s := NewStore()
	tx, _ := s.Begin("load")
	defer tx.Rollback()

	n, err := tx.InsertNode(Node{Key: "c", Category: Cloud, Ident: RealIdentity("c"), Equation: "7"})
	if err != nil {
		t.Fatal(err)
	}
	if n.Equation != "" {
		t.Error("cloud equation should be dropped")
	}
	if _, err := tx.InsertNode(Node{Key: "c", Category: Stock}); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate key = %v", err)
	}
	if _, err := tx.InsertNode(Node{Category: Stock}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("empty key = %v", err)
	}
	if _, err := tx.InsertNode(Node{Key: "p", Category: "pipe"}); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("unknown category = %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s, keys := newPopulationStore(t)
	g := s.Graph()
	c := g.Clone()

	n, _ := c.Node(keys["pop"])
	n.Equation = "changed"
	l, _ := c.Link(keys["in"])
	l.LabelKeys[0] = "other"

	orig, _ := g.Node(keys["pop"])
	if orig.Equation == "changed" {
		t.Error("clone shares nodes")
	}
	origLink, _ := g.Link(keys["in"])
	if origLink.LabelKeys[0] != keys["inValve"] {
		t.Error("clone shares label keys")
	}
}
