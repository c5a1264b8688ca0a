// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import "encoding/binary"

// memokey identifies a sub-problem of Combine and Regress: a pair of nodes,
// whether the target variable has already been eliminated on the current path
// (always false for Combine), and the values of the relevant variables, that
// is the retrograde variables of the two nodes. Two recursion states with the
// same key always produce the same result.
type memokey struct {
	leader     NodeID
	follower   NodeID
	eliminated bool
	inst       string
}

// key computes the memo key of the pair (a, b) in the current context, where
// relevant is the union of the retrograde variables of a and b. We encode the
// value of each relevant variable, in increasing order of position, in a byte
// buffer reused between calls.
func (e *engine[T]) key(a, b NodeID, relevant bitset) memokey {
	buf := e.kbuff[:0]
	relevant.each(func(i int) bool {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e.ctx.value(i)))
		return true
	})
	e.kbuff = buf
	return memokey{
		leader:     a,
		follower:   b,
		eliminated: e.target >= 0 && e.ctx.isset(e.target),
		inst:       string(buf),
	}
}

// pairkey is the key used for memoizing Apply, where both operands are in the
// same diagram.
type pairkey [2]NodeID
