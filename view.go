// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

// View is an interface giving read-only access to a reduced ordered decision
// diagram. This is all that operations such as Combine and Regress need to
// know about their operands. Diagram implements View.
type View[T comparable] interface {
	// Root returns the root of the diagram, or NoNode if there is none.
	Root() NodeID

	// IsTerminal returns true if n is a terminal node.
	IsTerminal(n NodeID) bool

	// Value returns the value held by terminal node n.
	Value(n NodeID) T

	// Var returns the variable tested by internal node n.
	Var(n NodeID) *Variable

	// Son returns the target of the explicit arc for modality m of internal
	// node n, or NoNode if the modality is covered by the default arc.
	Son(n NodeID, m int) NodeID

	// Default returns the target of the default arc of internal node n, or
	// NoNode if there is none.
	Default(n NodeID) NodeID

	// HasDefault returns true if internal node n has a default arc.
	HasDefault(n NodeID) bool

	// Order returns the variable order of the diagram.
	Order() []*Variable

	// NodesOf returns the internal nodes labelled by variable v.
	NodesOf(v *Variable) []NodeID
}

var _ View[float64] = (*Diagram[float64])(nil)

// viewchild returns the target of the arc for modality m of n in view d.
func viewchild[T comparable](d View[T], n NodeID, m int) NodeID {
	if s := d.Son(n, m); s != NoNode {
		return s
	}
	return d.Default(n)
}
