package diagram

// Tx is a pending set of mutations. Edits are applied to a private copy of
// the committed graph and published atomically by Commit.
type Tx struct {
	store *Store
	id    uint64
	name  string
	work  *Graph

	active     bool
	committed  bool
	rolledBack bool
	changes    int
}

// ID returns the store-local transaction number.
func (tx *Tx) ID() uint64 { return tx.id }

// Name returns the transaction name given to Begin.
func (tx *Tx) Name() string { return tx.name }

// Changes returns the number of successful mutations applied so far.
func (tx *Tx) Changes() int { return tx.changes }

// Graph returns the transaction's working graph. Raw Graph mutators
// (DeleteNode, DeleteLink) applied to it are published with the transaction.
func (tx *Tx) Graph() *Graph { return tx.work }

// Commit verifies the structural invariants of the working graph and
// publishes it.
func (tx *Tx) Commit() error {
	if tx.committed || tx.rolledBack {
		return ErrTransactionAlreadyEnded
	}
	if !tx.active {
		return ErrTransactionNotActive
	}

	if err := CheckStructure(tx.work); err != nil {
		tx.Rollback()
		return NewError("Commit").Context("transaction %q", tx.name).Cause(err).Err()
	}

	tx.store.graph = tx.work
	tx.store.active = nil
	tx.committed = true
	tx.active = false
	return nil
}

// Rollback discards the transaction. Rolling back twice is a no-op; rolling
// back a committed transaction fails.
func (tx *Tx) Rollback() error {
	if tx.committed {
		return ErrTransactionAlreadyEnded
	}
	if !tx.active {
		return nil
	}
	tx.work = nil
	tx.rolledBack = true
	tx.active = false
	if tx.store.active == tx {
		tx.store.active = nil
	}
	return nil
}

// CheckStructure verifies link endpoint typing and flow/valve ownership:
//
//   - every link endpoint exists;
//   - flow endpoints are stocks or clouds and the flow's first label node
//     exists and is a valve;
//   - influence targets are neither stocks nor clouds.
func CheckStructure(r Reader) error {
	for _, l := range r.Links() {
		from, ok := r.Node(l.From)
		if !ok {
			return NewError("CheckStructure").Link(l.Key).Field("from").Cause(ErrNodeNotFound).Err()
		}
		to, ok := r.Node(l.To)
		if !ok {
			return NewError("CheckStructure").Link(l.Key).Field("to").Cause(ErrNodeNotFound).Err()
		}
		switch l.Category {
		case Flow:
			if !from.Category.FlowEndpoint() || !to.Category.FlowEndpoint() {
				return NewError("CheckStructure").Link(l.Key).Cause(ErrInvalidFlowEndpoint).Err()
			}
			valve, ok := r.Node(l.ValveKey())
			if !ok || valve.Category != Valve {
				return NewError("CheckStructure").Link(l.Key).Field("labelKeys").Cause(ErrFlowWithoutValve).Err()
			}
		case Influence:
			if to.Category.FlowEndpoint() {
				return NewError("CheckStructure").Link(l.Key).Cause(ErrInvalidInfluenceTarget).Err()
			}
		default:
			return NewError("CheckStructure").Link(l.Key).Field("category").Cause(ErrUnknownCategory).Err()
		}
	}
	return nil
}
