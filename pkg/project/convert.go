package project

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
)

// Load inserts every node and then every link of the document into tx.
// Nodes keep their keys; links without a key get one from the store.
func (d *Document) Load(tx *diagram.Tx) error {
	for i := range d.NodeDataArray {
		n, err := d.NodeDataArray[i].node()
		if err != nil {
			return fmt.Errorf("%w: node %q: %v", ErrInvalidDocument, d.NodeDataArray[i].Key, err)
		}
		if _, err := tx.InsertNode(n); err != nil {
			return err
		}
	}
	for i := range d.LinkDataArray {
		if _, err := tx.InsertLink(d.LinkDataArray[i].link()); err != nil {
			return err
		}
	}
	return nil
}

// Graph builds a committed graph from the document. The commit applies the
// structural checks of the diagram store.
func (d *Document) Graph() (*diagram.Graph, error) {
	store := diagram.NewStore()
	if err := store.Update("load", d.Load); err != nil {
		return nil, err
	}
	return store.Graph(), nil
}

func (nd *NodeData) node() (diagram.Node, error) {
	n := diagram.Node{
		Key:      string(nd.Key),
		Category: diagram.Category(nd.Category),
		Ident:    diagram.ParseIdentity(nd.Label),
		Equation: nd.Equation,
	}

	if n.Category == diagram.Valve {
		n.BiflowAllowed = true
		switch {
		case nd.BiflowAllowed != nil:
			n.BiflowAllowed = *nd.BiflowAllowed
		case nd.Checkbox != nil:
			n.BiflowAllowed = !*nd.Checkbox
		}
	}

	switch {
	case nd.Position != nil:
		n.Position = diagram.Point{X: nd.Position.X, Y: nd.Position.Y}
	case nd.Loc != "":
		p, err := parseLoc(nd.Loc)
		if err != nil {
			return diagram.Node{}, err
		}
		n.Position = p
	}
	return n, nil
}

func (ld *LinkData) link() diagram.Link {
	return diagram.Link{
		Key:       string(ld.Key),
		Category:  diagram.LinkCategory(ld.Category),
		From:      string(ld.From),
		To:        string(ld.To),
		LabelKeys: keyStrings(ld.LabelKeys),
		Curviness: ld.Curviness,
	}
}

// parseLoc reads the legacy "x y" location string.
func parseLoc(loc string) (diagram.Point, error) {
	fields := strings.Fields(loc)
	if len(fields) != 2 {
		return diagram.Point{}, fmt.Errorf("loc %q is not \"x y\"", loc)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return diagram.Point{}, fmt.Errorf("loc %q: %w", loc, err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return diagram.Point{}, fmt.Errorf("loc %q: %w", loc, err)
	}
	return diagram.Point{X: x, Y: y}, nil
}

// FromGraph exports r in insertion order. sp may be nil, in which case the
// document carries no simulationParameters block.
func FromGraph(r diagram.Reader, sp *SimulationParameters) *Document {
	doc := New()
	for _, n := range r.Nodes() {
		nd := NodeData{
			Key:      Key(n.Key),
			Category: string(n.Category),
			Label:    n.Label(),
			Equation: n.Equation,
			Position: &Position{X: n.Position.X, Y: n.Position.Y},
		}
		if n.Category == diagram.Valve {
			allowed := n.BiflowAllowed
			nd.BiflowAllowed = &allowed
		}
		doc.NodeDataArray = append(doc.NodeDataArray, nd)
	}
	for _, l := range r.Links() {
		ld := LinkData{
			Key:       Key(l.Key),
			Category:  string(l.Category),
			From:      Key(l.From),
			To:        Key(l.To),
			Curviness: l.Curviness,
		}
		for _, k := range l.LabelKeys {
			ld.LabelKeys = append(ld.LabelKeys, Key(k))
		}
		doc.LinkDataArray = append(doc.LinkDataArray, ld)
	}
	if sp != nil {
		block := *sp
		doc.SimulationParameters = &block
	}
	return doc
}
