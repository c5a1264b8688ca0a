// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitset(t *testing.T) {
	s := newbitset(130)
	assert.Len(t, s, 3)
	assert.True(t, s.empty())
	for _, i := range []int{0, 3, 63, 64, 100, 129} {
		s.set(i)
	}
	assert.False(t, s.empty())
	assert.Len(t, members(s), 6)
	assert.True(t, s.has(63))
	assert.True(t, s.has(64))
	assert.False(t, s.has(65))

	var all []int
	s.each(func(i int) bool {
		all = append(all, i)
		return true
	})
	assert.Equal(t, []int{0, 3, 63, 64, 100, 129}, all)

	var first []int
	s.each(func(i int) bool {
		first = append(first, i)
		return len(first) < 2
	})
	assert.Equal(t, []int{0, 3}, first)

	var belowTests = []struct {
		limit    int
		expected int
	}{
		{0, 0},
		{1, 1},
		{4, 2},
		{64, 3},
		{65, 4},
		{129, 5},
		{130, 6},
	}
	for _, tt := range belowTests {
		assert.Len(t, members(s.below(tt.limit)), tt.expected, "below(%d)", tt.limit)
	}
}

func members(s bitset) []int {
	res := []int{}
	s.each(func(i int) bool {
		res = append(res, i)
		return true
	})
	return res
}

func TestBitsetUnionIntersect(t *testing.T) {
	a, b := newbitset(70), newbitset(70)
	a.set(1)
	a.set(65)
	b.set(65)
	b.set(2)
	c := a.clone()
	c.union(b)
	assert.Equal(t, []int{1, 2, 65}, members(c))
	assert.Equal(t, []int{1, 65}, members(a), "clone must not share storage")
	i := a.intersect(b)
	assert.Equal(t, []int{65}, members(i))
}

func TestInstantiation(t *testing.T) {
	ctx := newinstantiation(4)
	for p := 0; p < 4; p++ {
		assert.False(t, ctx.isset(p))
	}
	s := newbitset(4)
	s.set(1)
	s.set(3)
	assert.Equal(t, 1, ctx.firstunset(s))

	restore := ctx.bind(1, 0)
	assert.Equal(t, int32(0), ctx.value(1))
	assert.Equal(t, 3, ctx.firstunset(s))
	ctx.set(1, dflt)
	assert.True(t, ctx.isset(1))
	inner := ctx.bind(3, 2)
	assert.Equal(t, _TERMINALPOS, ctx.firstunset(s))
	inner()
	restore()
	assert.False(t, ctx.isset(1))
	assert.False(t, ctx.isset(3))
	assert.Equal(t, 1, ctx.firstunset(s))
}
