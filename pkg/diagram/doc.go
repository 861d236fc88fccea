// Package diagram holds the canonical in-memory stock-and-flow graph and the
// transactional store that mutates it.
//
// A Graph is made of Nodes (stocks, clouds, variables, valves) and Links
// (flows between stocks/clouds, influences into variables/valves). Every
// flow link carries exactly one valve as its label node; the valve holds the
// flow's name and rate equation.
//
// Nodes have a tagged Identity: either Real or Ghost. A ghost is a
// presentation-only alias of the real node that has the same canonical name
// and category. Its label is rendered with the GhostMarker prefix.
//
// All edits go through a Store transaction:
//
//	tx, err := store.Begin("add-stock")
//	node, err := tx.AddNode(diagram.Stock, diagram.Point{X: 10, Y: 20})
//	err = tx.Rename(node.Key, "Population")
//	err = tx.Commit()
//
// Mutations are applied to a private copy of the graph and become visible
// only on Commit, so observers never see a half-applied edit. The store is
// not safe for concurrent use; the editor has a single mutator.
package diagram
