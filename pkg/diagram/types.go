package diagram

import "strings"

// Category is the kind of a node.
type Category string

const (
	Stock    Category = "stock"
	Cloud    Category = "cloud"
	Variable Category = "variable"
	Valve    Category = "valve"
)

// Valid reports whether c is one of the known node categories.
func (c Category) Valid() bool {
	switch c {
	case Stock, Cloud, Variable, Valve:
		return true
	}
	return false
}

// FlowEndpoint reports whether a flow may start or end at a node of this
// category.
func (c Category) FlowEndpoint() bool {
	return c == Stock || c == Cloud
}

// HasEquation reports whether nodes of this category carry an equation.
func (c Category) HasEquation() bool {
	return c == Stock || c == Variable || c == Valve
}

// LinkCategory is the kind of a link.
type LinkCategory string

const (
	Flow      LinkCategory = "flow"
	Influence LinkCategory = "influence"
)

// Valid reports whether c is one of the known link categories.
func (c LinkCategory) Valid() bool {
	return c == Flow || c == Influence
}

// GhostMarker is the reserved label prefix of ghost nodes.
const GhostMarker = "$"

// Kind tags a node identity as real or ghost.
type Kind uint8

const (
	Real Kind = iota
	Ghost
)

func (k Kind) String() string {
	if k == Ghost {
		return "ghost"
	}
	return "real"
}

// Identity is the parsed form of a node label.
type Identity struct {
	Kind Kind
	// Name is the canonical name: the label without the ghost marker.
	Name string
}

// ParseIdentity splits a display label into its identity.
func ParseIdentity(label string) Identity {
	if name, ok := strings.CutPrefix(label, GhostMarker); ok {
		return Identity{Kind: Ghost, Name: name}
	}
	return Identity{Kind: Real, Name: label}
}

// RealIdentity returns the identity of a canonical node named name.
func RealIdentity(name string) Identity {
	return Identity{Kind: Real, Name: name}
}

// GhostIdentity returns the identity of a ghost of name.
func GhostIdentity(name string) Identity {
	return Identity{Kind: Ghost, Name: name}
}

// Label renders the identity as a display label.
func (id Identity) Label() string {
	if id.Kind == Ghost {
		return GhostMarker + id.Name
	}
	return id.Name
}

// Point is a diagram position. The core never interprets it.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a diagram vertex.
type Node struct {
	Key      string
	Category Category
	Ident    Identity
	// Equation is the initial value of a stock, the expression of a variable
	// or the rate of a valve. Ghosts and clouds never carry one.
	Equation string
	// BiflowAllowed is only meaningful on valves. When false the flow is
	// translated as a uniflow.
	BiflowAllowed bool
	Position      Point
}

// Label returns the display label.
func (n *Node) Label() string { return n.Ident.Label() }

// Name returns the canonical name.
func (n *Node) Name() string { return n.Ident.Name }

// IsGhost reports whether the node is a ghost alias.
func (n *Node) IsGhost() bool { return n.Ident.Kind == Ghost }

func (n *Node) clone() *Node {
	c := *n
	return &c
}

// Link is a diagram edge.
type Link struct {
	Key      string
	Category LinkCategory
	From     string
	To       string
	// LabelKeys lists the label nodes of the link. For a flow the first entry
	// is the valve key.
	LabelKeys []string
	// Curviness is presentation data carried through the exchange format.
	Curviness float64
}

// ValveKey returns the key of the valve owning a flow link, or "" when the
// link has no label node.
func (l *Link) ValveKey() string {
	if len(l.LabelKeys) == 0 {
		return ""
	}
	return l.LabelKeys[0]
}

// Touches reports whether key is an endpoint of the link.
func (l *Link) Touches(key string) bool {
	return l.From == key || l.To == key
}

func (l *Link) clone() *Link {
	c := *l
	c.LabelKeys = append([]string(nil), l.LabelKeys...)
	return &c
}
