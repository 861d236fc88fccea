package diagram

// The mutators below validate their input, apply it to the working graph and
// count the change. None of them is visible outside the transaction before
// Commit.

func (tx *Tx) check(op string) error {
	if !tx.active {
		return NewError(op).Cause(ErrTransactionNotActive).Err()
	}
	return nil
}

func (tx *Tx) node(op, key string) (*Node, error) {
	n, ok := tx.work.Node(key)
	if !ok {
		return nil, NewError(op).Node(key).Cause(ErrNodeNotFound).Err()
	}
	return n, nil
}

// AddNode creates a stock, cloud or variable at pos with a generated key and
// a label equal to that key. Valves only come into existence through AddFlow.
func (tx *Tx) AddNode(category Category, pos Point) (*Node, error) {
	if err := tx.check("AddNode"); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, NewError("AddNode").Context("category %q", category).Cause(ErrUnknownCategory).Err()
	}
	if category == Valve {
		return nil, NewError("AddNode").Cause(ErrDirectValveEdit).Err()
	}

	key, label := tx.work.nextNodeKey(category)
	n := &Node{
		Key:      key,
		Category: category,
		Ident:    RealIdentity(label),
		Position: pos,
	}
	tx.work.insertNode(n)
	tx.changes++
	return n, nil
}

// InsertNode adds a fully specified node, as read from a saved document. Keys
// must be unique; labels are not checked so that a damaged document can still
// be loaded and reported on.
func (tx *Tx) InsertNode(n Node) (*Node, error) {
	if err := tx.check("InsertNode"); err != nil {
		return nil, err
	}
	if n.Key == "" {
		return nil, NewError("InsertNode").Field("key").Cause(ErrEmptyKey).Err()
	}
	if !n.Category.Valid() {
		return nil, NewError("InsertNode").Node(n.Key).Context("category %q", n.Category).Cause(ErrUnknownCategory).Err()
	}
	if _, taken := tx.work.Node(n.Key); taken {
		return nil, NewError("InsertNode").Node(n.Key).Cause(ErrDuplicateKey).Err()
	}
	if n.IsGhost() || !n.Category.HasEquation() {
		n.Equation = ""
	}
	stored := n.clone()
	tx.work.insertNode(stored)
	tx.changes++
	return stored, nil
}

// AddFlow draws a flow from one stock/cloud to another. A valve labelled
// flow<n> is created as the flow's label node. New flows allow negative
// rates until the user restricts them.
func (tx *Tx) AddFlow(from, to string, valvePos Point) (*Link, *Node, error) {
	if err := tx.check("AddFlow"); err != nil {
		return nil, nil, err
	}
	src, err := tx.node("AddFlow", from)
	if err != nil {
		return nil, nil, err
	}
	dst, err := tx.node("AddFlow", to)
	if err != nil {
		return nil, nil, err
	}
	if from == to {
		return nil, nil, NewError("AddFlow").Node(from).Cause(ErrSelfLink).Err()
	}
	if !src.Category.FlowEndpoint() || !dst.Category.FlowEndpoint() {
		return nil, nil, NewError("AddFlow").Context("%s -> %s", from, to).Cause(ErrInvalidFlowEndpoint).Err()
	}

	valveKey, valveLabel := tx.work.nextNodeKey(Valve)
	valve := &Node{
		Key:           valveKey,
		Category:      Valve,
		Ident:         RealIdentity(valveLabel),
		BiflowAllowed: true,
		Position:      valvePos,
	}
	link := &Link{
		Key:       tx.work.nextLinkKey(),
		Category:  Flow,
		From:      from,
		To:        to,
		LabelKeys: []string{valveKey},
	}
	tx.work.insertNode(valve)
	tx.work.insertLink(link)
	tx.changes++
	return link, valve, nil
}

// AddInfluence draws a causal influence from any node into a variable or a
// valve.
func (tx *Tx) AddInfluence(from, to string) (*Link, error) {
	if err := tx.check("AddInfluence"); err != nil {
		return nil, err
	}
	if _, err := tx.node("AddInfluence", from); err != nil {
		return nil, err
	}
	dst, err := tx.node("AddInfluence", to)
	if err != nil {
		return nil, err
	}
	if from == to {
		return nil, NewError("AddInfluence").Node(from).Cause(ErrSelfLink).Err()
	}
	if dst.Category.FlowEndpoint() {
		return nil, NewError("AddInfluence").Node(to).Cause(ErrInvalidInfluenceTarget).Err()
	}

	link := &Link{
		Key:      tx.work.nextLinkKey(),
		Category: Influence,
		From:     from,
		To:       to,
	}
	tx.work.insertLink(link)
	tx.changes++
	return link, nil
}

// InsertLink adds a fully specified link, as read from a saved document. A
// missing key is generated. Endpoint typing is enforced here and again at
// commit.
func (tx *Tx) InsertLink(l Link) (*Link, error) {
	if err := tx.check("InsertLink"); err != nil {
		return nil, err
	}
	if !l.Category.Valid() {
		return nil, NewError("InsertLink").Link(l.Key).Context("category %q", l.Category).Cause(ErrUnknownCategory).Err()
	}
	if l.Key == "" {
		l.Key = tx.work.nextLinkKey()
	} else if _, taken := tx.work.Link(l.Key); taken {
		return nil, NewError("InsertLink").Link(l.Key).Cause(ErrDuplicateKey).Err()
	}
	src, ok := tx.work.Node(l.From)
	if !ok {
		return nil, NewError("InsertLink").Link(l.Key).Field("from").Cause(ErrNodeNotFound).Err()
	}
	dst, ok := tx.work.Node(l.To)
	if !ok {
		return nil, NewError("InsertLink").Link(l.Key).Field("to").Cause(ErrNodeNotFound).Err()
	}
	switch l.Category {
	case Flow:
		if !src.Category.FlowEndpoint() || !dst.Category.FlowEndpoint() {
			return nil, NewError("InsertLink").Link(l.Key).Cause(ErrInvalidFlowEndpoint).Err()
		}
		if v, ok := tx.work.Node(l.ValveKey()); !ok || v.Category != Valve {
			return nil, NewError("InsertLink").Link(l.Key).Field("labelKeys").Cause(ErrFlowWithoutValve).Err()
		}
	case Influence:
		if dst.Category.FlowEndpoint() {
			return nil, NewError("InsertLink").Link(l.Key).Cause(ErrInvalidInfluenceTarget).Err()
		}
	}

	stored := l.clone()
	tx.work.insertLink(stored)
	tx.changes++
	return stored, nil
}

// RemoveNode deletes a node and everything that cannot exist without it,
// as Graph.RemoveNode does.
func (tx *Tx) RemoveNode(key string) error {
	if err := tx.check("RemoveNode"); err != nil {
		return err
	}
	if _, err := tx.node("RemoveNode", key); err != nil {
		return err
	}
	tx.work.RemoveNode(key)
	tx.changes++
	return nil
}

// RemoveLink deletes a link. Removing a flow also removes its valve.
func (tx *Tx) RemoveLink(key string) error {
	if err := tx.check("RemoveLink"); err != nil {
		return err
	}
	if _, ok := tx.work.Link(key); !ok {
		return NewError("RemoveLink").Link(key).Cause(ErrLinkNotFound).Err()
	}
	tx.work.RemoveLink(key)
	tx.changes++
	return nil
}

// Rename relabels a node after checking the label rules of CheckLabel.
// Turning a node into a ghost drops its equation.
func (tx *Tx) Rename(key, label string) error {
	if err := tx.check("Rename"); err != nil {
		return err
	}
	n, err := tx.node("Rename", key)
	if err != nil {
		return err
	}
	if err := CheckLabel(tx.work, key, n.Category, n.Label(), label); err != nil {
		return NewError("Rename").Node(key).Field("label").Context("%q", label).Cause(err).Err()
	}
	n.Ident = ParseIdentity(label)
	if n.IsGhost() {
		n.Equation = ""
	}
	tx.changes++
	return nil
}

// SetEquation replaces the equation of a stock, variable or valve.
func (tx *Tx) SetEquation(key, equation string) error {
	if err := tx.check("SetEquation"); err != nil {
		return err
	}
	n, err := tx.node("SetEquation", key)
	if err != nil {
		return err
	}
	if n.IsGhost() {
		return NewError("SetEquation").Node(key).Field("equation").Cause(ErrGhostHasNoData).Err()
	}
	if !n.Category.HasEquation() {
		return NewError("SetEquation").Node(key).Field("equation").Cause(ErrNoEquation).Err()
	}
	n.Equation = equation
	tx.changes++
	return nil
}

// SetBiflow sets whether the flow owned by a valve may carry negative rates.
func (tx *Tx) SetBiflow(key string, allowed bool) error {
	if err := tx.check("SetBiflow"); err != nil {
		return err
	}
	n, err := tx.node("SetBiflow", key)
	if err != nil {
		return err
	}
	if n.Category != Valve {
		return NewError("SetBiflow").Node(key).Cause(ErrNotAValve).Err()
	}
	if n.IsGhost() {
		return NewError("SetBiflow").Node(key).Cause(ErrGhostHasNoData).Err()
	}
	n.BiflowAllowed = allowed
	tx.changes++
	return nil
}

// Move sets a node's position.
func (tx *Tx) Move(key string, pos Point) error {
	if err := tx.check("Move"); err != nil {
		return err
	}
	n, err := tx.node("Move", key)
	if err != nil {
		return err
	}
	n.Position = pos
	tx.changes++
	return nil
}
