package diagram

import (
	"fmt"
	"slices"
)

// Reader is the read-only view of a graph consumed by validators, the
// translator and the run pipeline.
type Reader interface {
	// Nodes returns every node in insertion order.
	Nodes() []*Node
	// Links returns every link in insertion order.
	Links() []*Link
	// Node looks a node up by key.
	Node(key string) (*Node, bool)
}

// Graph is the node/link container. Its zero value is not usable; call
// NewGraph.
type Graph struct {
	nodes   []*Node
	links   []*Link
	nodeIdx map[string]*Node
	linkIdx map[string]*Link

	// counters feed key generation per node category, linkSeq feeds link
	// keys. Both survive Clone so rolled-back keys are never reused.
	counters map[Category]int
	linkSeq  int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodeIdx:  make(map[string]*Node),
		linkIdx:  make(map[string]*Link),
		counters: make(map[Category]int),
	}
}

// Nodes returns the nodes in insertion order. The slice is a copy; the nodes
// are shared and must be treated as read-only outside a transaction.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.nodes)
}

// Links returns the links in insertion order.
func (g *Graph) Links() []*Link {
	return slices.Clone(g.links)
}

// Node looks a node up by key.
func (g *Graph) Node(key string) (*Node, bool) {
	n, ok := g.nodeIdx[key]
	return n, ok
}

// Link looks a link up by key.
func (g *Graph) Link(key string) (*Link, bool) {
	l, ok := g.linkIdx[key]
	return l, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.links) }

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:    make([]*Node, 0, len(g.nodes)),
		links:    make([]*Link, 0, len(g.links)),
		nodeIdx:  make(map[string]*Node, len(g.nodes)),
		linkIdx:  make(map[string]*Link, len(g.links)),
		counters: make(map[Category]int, len(g.counters)),
		linkSeq:  g.linkSeq,
	}
	for _, n := range g.nodes {
		cn := n.clone()
		c.nodes = append(c.nodes, cn)
		c.nodeIdx[cn.Key] = cn
	}
	for _, l := range g.links {
		cl := l.clone()
		c.links = append(c.links, cl)
		c.linkIdx[cl.Key] = cl
	}
	for k, v := range g.counters {
		c.counters[k] = v
	}
	return c
}

// DeleteNode removes a single node without touching its links. It returns
// false when the key is unknown. RemoveNode is the cascading form.
func (g *Graph) DeleteNode(key string) bool {
	if _, ok := g.nodeIdx[key]; !ok {
		return false
	}
	delete(g.nodeIdx, key)
	g.nodes = slices.DeleteFunc(g.nodes, func(n *Node) bool { return n.Key == key })
	return true
}

// DeleteLink removes a single link without touching its label node.
func (g *Graph) DeleteLink(key string) bool {
	if _, ok := g.linkIdx[key]; !ok {
		return false
	}
	delete(g.linkIdx, key)
	g.links = slices.DeleteFunc(g.links, func(l *Link) bool { return l.Key == key })
	return true
}

// Removal lists the keys taken out by a cascading delete.
type Removal struct {
	Nodes []string
	Links []string
}

// RemoveNode deletes a node and everything that cannot exist without it: its
// incident links, the flow it labels when it is a valve, and the valves of
// removed flows. Unknown keys remove nothing.
func (g *Graph) RemoveNode(key string) Removal {
	var r Removal
	g.cascadeNode(key, &r)
	return r
}

// RemoveLink deletes a link. Removing a flow also removes its valve.
func (g *Graph) RemoveLink(key string) Removal {
	var r Removal
	if l, ok := g.linkIdx[key]; ok {
		g.cascadeLink(l, &r)
	}
	return r
}

func (g *Graph) cascadeNode(key string, r *Removal) {
	n, ok := g.nodeIdx[key]
	if !ok {
		return
	}
	if n.Category == Valve {
		if flow := FlowOf(g, key); flow != nil {
			g.cascadeLink(flow, r)
		}
	}
	for _, l := range IncidentLinks(g, key) {
		g.cascadeLink(l, r)
	}
	if g.DeleteNode(key) {
		r.Nodes = append(r.Nodes, key)
	}
}

func (g *Graph) cascadeLink(l *Link, r *Removal) {
	if !g.DeleteLink(l.Key) {
		return
	}
	r.Links = append(r.Links, l.Key)
	if l.Category != Flow {
		return
	}
	for _, labelKey := range l.LabelKeys {
		g.cascadeNode(labelKey, r)
	}
}

func (g *Graph) insertNode(n *Node) {
	g.nodes = append(g.nodes, n)
	g.nodeIdx[n.Key] = n
}

func (g *Graph) insertLink(l *Link) {
	g.links = append(g.links, l)
	g.linkIdx[l.Key] = l
}

// nextNodeKey returns the next free key and default label for category,
// following the editor's <category><n> scheme. Valves are keyed valve<n> and
// labelled flow<n>.
func (g *Graph) nextNodeKey(category Category) (key, label string) {
	prefix := string(category)
	labelPrefix := prefix
	if category == Valve {
		labelPrefix = "flow"
	}
	for {
		g.counters[category]++
		n := g.counters[category]
		key = fmt.Sprintf("%s%d", prefix, n)
		label = fmt.Sprintf("%s%d", labelPrefix, n)
		if _, taken := g.nodeIdx[key]; taken {
			continue
		}
		if CheckLabel(g, key, category, "", label) != nil {
			continue
		}
		return key, label
	}
}

func (g *Graph) nextLinkKey() string {
	for {
		g.linkSeq++
		key := fmt.Sprintf("link%d", g.linkSeq)
		if _, taken := g.linkIdx[key]; !taken {
			return key
		}
	}
}

// FindReal returns the non-ghost node with the given canonical name and
// category. An empty category matches any category.
func FindReal(r Reader, name string, category Category) *Node {
	for _, n := range r.Nodes() {
		if n.IsGhost() || n.Name() != name {
			continue
		}
		if category == "" || n.Category == category {
			return n
		}
	}
	return nil
}

// FlowOf returns the flow link whose label node is valveKey.
func FlowOf(r Reader, valveKey string) *Link {
	for _, l := range r.Links() {
		if l.Category == Flow && l.ValveKey() == valveKey {
			return l
		}
	}
	return nil
}

// IncidentLinks returns the links that start or end at key.
func IncidentLinks(r Reader, key string) []*Link {
	var out []*Link
	for _, l := range r.Links() {
		if l.Touches(key) {
			out = append(out, l)
		}
	}
	return out
}

// InfluencesInto returns the influence links whose target is key.
func InfluencesInto(r Reader, key string) []*Link {
	var out []*Link
	for _, l := range r.Links() {
		if l.Category == Influence && l.To == key {
			out = append(out, l)
		}
	}
	return out
}
