// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import "math/bits"

// bitset is a set of positions in a fused variable order. Bit i of word i/64
// represents position i. Bitsets for the same order always have the same
// number of words.
type bitset []uint64

func newbitset(size int) bitset {
	return make(bitset, (size+63)/64)
}

func (s bitset) set(i int) {
	s[i/64] |= 1 << (uint(i) % 64)
}

func (s bitset) has(i int) bool {
	return s[i/64]&(1<<(uint(i)%64)) != 0
}

// union sets s to s | o.
func (s bitset) union(o bitset) {
	for k := range s {
		s[k] |= o[k]
	}
}

// below returns a new bitset with the positions of s that are strictly less
// than limit.
func (s bitset) below(limit int) bitset {
	res := make(bitset, len(s))
	for k := range s {
		switch {
		case (k+1)*64 <= limit:
			res[k] = s[k]
		case k*64 < limit:
			res[k] = s[k] & (1<<(uint(limit)%64) - 1)
		}
	}
	return res
}

// intersect returns a new bitset equal to s & o.
func (s bitset) intersect(o bitset) bitset {
	res := make(bitset, len(s))
	for k := range s {
		res[k] = s[k] & o[k]
	}
	return res
}

func (s bitset) empty() bool {
	for _, w := range s {
		if w != 0 {
			return false
		}
	}
	return true
}

// each calls f on every position in s, in increasing order, and stops when f
// returns false.
func (s bitset) each(f func(i int) bool) {
	for k, w := range s {
		for w != 0 {
			i := bits.TrailingZeros64(w)
			if !f(k*64 + i) {
				return
			}
			w &= w - 1
		}
	}
}

func (s bitset) clone() bitset {
	return append(bitset(nil), s...)
}
