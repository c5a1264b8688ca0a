// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

// Fold returns the node of b computing op(n[0], op(n[1], ...)) pointwise. It
// returns an error if n is empty.
func (b *Diagram[T]) Fold(op func(T, T) T, n ...NodeID) (NodeID, error) {
	if len(n) == 0 {
		return NoNode, newError("Fold", ErrMalformed, "empty list of operands")
	}
	if len(n) == 1 {
		if !b.valid(n[0]) {
			return NoNode, newError("Fold", ErrMalformed, "wrong operand (%d)", n[0])
		}
		return n[0], nil
	}
	rest, err := b.Fold(op, n[1:]...)
	if err != nil {
		return NoNode, err
	}
	return Apply(b, n[0], rest, op)
}

// Sum returns the pointwise sum of a sequence of nodes of b.
func Sum[T Number](b *Diagram[T], n ...NodeID) (NodeID, error) {
	if len(n) == 0 {
		return b.AddTerminalNode(0), nil
	}
	return b.Fold(Plus[T], n...)
}

// Product returns the pointwise product of a sequence of nodes of b.
func Product[T Number](b *Diagram[T], n ...NodeID) (NodeID, error) {
	if len(n) == 0 {
		return b.AddTerminalNode(1), nil
	}
	return b.Fold(Times[T], n...)
}

// Maximum returns the pointwise maximum of a non-empty sequence of nodes of b.
func Maximum[T Number](b *Diagram[T], n ...NodeID) (NodeID, error) {
	return b.Fold(Max[T], n...)
}

// Equal tests whether two nodes of b denote the same function. Since nodes
// are canonical, this is the same as testing node equality.
func (b *Diagram[T]) Equal(x, y NodeID) bool {
	return x == y
}

// Constant returns the terminal node of b holding value v.
func (b *Diagram[T]) Constant(v T) NodeID {
	return b.AddTerminalNode(v)
}
