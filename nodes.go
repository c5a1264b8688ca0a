// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

type nodekind uint8

const (
	kfree nodekind = iota
	kterminal
	kinternal
)

// node is an entry in the node table of a Diagram. When a slot is unused we
// have kind set to kfree and def set to the next free position (or NoNode if
// last).
type node[T comparable] struct {
	kind  nodekind
	v     *Variable // variable tested by an internal node
	value T         // value of a terminal node
	sons  []NodeID  // one arc per modality, NoNode when covered by the default arc
	def   NodeID    // default arc, NoNode if absent
}

// ************************************************************

func (b *Diagram[T]) isfree(n NodeID) bool {
	return b.nodes[n].kind == kfree
}

func (b *Diagram[T]) valid(n NodeID) bool {
	return n >= 0 && int(n) < len(b.nodes) && !b.isfree(n)
}

// child returns the target of the arc for modality m of internal node n,
// following the default arc if needed.
func (b *Diagram[T]) child(n NodeID, m int) NodeID {
	if s := b.nodes[n].sons[m]; s != NoNode {
		return s
	}
	return b.nodes[n].def
}

// level returns the position of the variable tested by n in the order of b,
// or _TERMINALPOS for terminal nodes.
func (b *Diagram[T]) level(n NodeID) int {
	if b.nodes[n].kind != kinternal {
		return _TERMINALPOS
	}
	return b.pos[b.nodes[n].v]
}
