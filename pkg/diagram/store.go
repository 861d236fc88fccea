package diagram

// Store owns the committed graph and hands out one transaction at a time.
type Store struct {
	graph  *Graph
	active *Tx
	txSeq  uint64
}

// NewStore returns a store holding an empty graph.
func NewStore() *Store {
	return &Store{graph: NewGraph()}
}

// NewStoreFrom returns a store that takes ownership of g.
func NewStoreFrom(g *Graph) *Store {
	if g == nil {
		g = NewGraph()
	}
	return &Store{graph: g}
}

// Graph returns the committed graph. Callers must not mutate it.
func (s *Store) Graph() *Graph {
	return s.graph
}

// InTransaction reports whether a transaction is open.
func (s *Store) InTransaction() bool {
	return s.active != nil
}

// Begin opens a transaction named name. Only one transaction may be open.
func (s *Store) Begin(name string) (*Tx, error) {
	if s.active != nil {
		return nil, NewError("Begin").Context("open transaction %q", s.active.name).Cause(ErrNestedTransaction).Err()
	}
	s.txSeq++
	tx := &Tx{
		store:  s,
		id:     s.txSeq,
		name:   name,
		work:   s.graph.Clone(),
		active: true,
	}
	s.active = tx
	return tx, nil
}

// Update runs fn inside a transaction, committing on success and rolling back
// when fn or the commit fails.
func (s *Store) Update(name string, fn func(tx *Tx) error) error {
	tx, err := s.Begin(name)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
