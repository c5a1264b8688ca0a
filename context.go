// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

// instantiation is the mutable part of the recursion state of Combine and
// Regress: the value of every variable of the fused order, which is either a
// modality, unset, or dflt when we followed a default arc. There is a single
// instantiation for a whole operation; each branching function binds its
// variable and restores it before returning (see bind).
type instantiation struct {
	vals []int32
}

func newinstantiation(size int) *instantiation {
	c := &instantiation{vals: make([]int32, size)}
	for k := range c.vals {
		c.vals[k] = unset
	}
	return c
}

// bind sets the value of the variable at position p and returns a function
// restoring the previous value. It is meant to be used with defer, so that the
// context is restored even when we stop on an error:
//
//	defer ctx.bind(p, m)()
func (c *instantiation) bind(p int, m int32) func() {
	old := c.vals[p]
	c.vals[p] = m
	return func() {
		c.vals[p] = old
	}
}

// set changes the value of a variable bound with bind, for instance when
// iterating over all the modalities of a variable.
func (c *instantiation) set(p int, m int32) {
	c.vals[p] = m
}

func (c *instantiation) value(p int) int32 {
	return c.vals[p]
}

func (c *instantiation) isset(p int) bool {
	return c.vals[p] != unset
}

// firstunset returns the smallest position in s that is not instantiated, or
// _TERMINALPOS if all the positions in s are instantiated.
func (c *instantiation) firstunset(s bitset) int {
	res := _TERMINALPOS
	s.each(func(i int) bool {
		if c.vals[i] == unset {
			res = i
			return false
		}
		return true
	})
	return res
}
