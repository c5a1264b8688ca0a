// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomorder returns a random subset of pool in random order.
func randomorder(r *rand.Rand, pool []*Variable) []*Variable {
	res := []*Variable{}
	for _, k := range r.Perm(len(pool)) {
		if r.Intn(3) > 0 {
			res = append(res, pool[k])
		}
	}
	return res
}

// randomdiagram returns a diagram, with the given order, of a random function
// with values in [0..span). Small values of span produce many default arcs.
func randomdiagram(t *testing.T, r *rand.Rand, order []*Variable, span int) *Diagram[int] {
	t.Helper()
	d, err := Build(order, func([]int) int { return r.Intn(span) })
	require.NoError(t, err)
	return d
}

// assignments calls f on every assignment of the variables in vars. The map
// passed to f is reused between calls.
func assignments(vars []*Variable, f func(inst map[*Variable]int)) {
	inst := make(map[*Variable]int, len(vars))
	var rec func(k int)
	rec = func(k int) {
		if k == len(vars) {
			f(inst)
			return
		}
		for m := 0; m < vars[k].Size(); m++ {
			inst[vars[k]] = m
			rec(k + 1)
		}
	}
	rec(0)
}

func mustEval[T comparable](t *testing.T, d *Diagram[T], inst map[*Variable]int) T {
	t.Helper()
	v, err := d.Eval(inst)
	require.NoError(t, err)
	return v
}

// expected returns the canonical diagram, with the given order, of the
// function f, where f is given the value of every variable in order.
func expected[T comparable](t *testing.T, order []*Variable, f func(inst map[*Variable]int) T) *Diagram[T] {
	t.Helper()
	m := make(map[*Variable]int, len(order))
	d, err := Build(order, func(inst []int) T {
		for k, v := range order {
			m[v] = inst[k]
		}
		return f(m)
	})
	require.NoError(t, err)
	return d
}

// sameFunction checks that two diagrams over the same variables compute the
// same function and have the same number of reachable nodes, which is the case
// for canonical diagrams with the same order.
func sameFunction[T comparable](t *testing.T, vars []*Variable, exp, actual *Diagram[T]) {
	t.Helper()
	assignments(vars, func(inst map[*Variable]int) {
		require.Equal(t, mustEval(t, exp, inst), mustEval(t, actual, inst), "at %v", inst)
	})
	require.Equal(t, len(exp.reachable()), len(actual.reachable()), "number of reachable nodes")
}

// reduced checks that a result of Combine or Regress is already canonical:
// Reduce must not change its root, nor create or remap any node. We also check
// that every explored sub-problem was memoized once.
func reduced[T comparable](t *testing.T, d *Diagram[T], s Stats) {
	t.Helper()
	require.Equal(t, s.Explored, s.Memoized, "explored sub-problems")
	root, size, nodes := d.Root(), d.Size(), d.reachable()
	require.NoError(t, d.Reduce())
	require.Equal(t, root, d.Root())
	require.Equal(t, size, d.Size())
	require.Equal(t, nodes, d.reachable())
}

var intOperators = []struct {
	name string
	op   func(int, int) int
}{
	{"plus", Plus[int]},
	{"times", Times[int]},
	{"max", Max[int]},
	{"minus", Minus[int]},
}

func randompool() []*Variable {
	return []*Variable{
		NewVariable("A", 2),
		NewVariable("B", 3),
		NewVariable("C", 1),
		NewVariable("D", 4),
		NewVariable("E", 2),
	}
}

//********************************************************************************************

func TestCombineScenario(t *testing.T) {
	x := NewVariable("X", 2)
	y := NewVariable("Y", 2)
	z := NewVariable("Z", 2)
	a, err := Build([]*Variable{x, y}, func(inst []int) float64 { return float64(1 + 2*inst[0] + inst[1]) })
	require.NoError(t, err)
	b, err := Build([]*Variable{y, z}, func(inst []int) float64 { return float64(5 + 2*inst[0] + inst[1]) })
	require.NoError(t, err)

	res, err := Combine[float64](a, b, Times[float64])
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z"}, names(res.Order()))
	assignments([]*Variable{x, y, z}, func(inst map[*Variable]int) {
		va := mustEval(t, a, inst)
		vb := mustEval(t, b, inst)
		assert.Equal(t, va*vb, mustEval(t, res, inst), "at %v", inst)
	})
}

func TestRegressScenario(t *testing.T) {
	x := NewVariable("X", 2)
	y := NewVariable("Y", 2)
	z := NewVariable("Z", 2)
	a, _ := Build([]*Variable{x, y}, func(inst []int) float64 { return float64(1 + 2*inst[0] + inst[1]) })
	b, _ := Build([]*Variable{y, z}, func(inst []int) float64 { return float64(5 + 2*inst[0] + inst[1]) })

	res, err := Regress[float64](a, b, nil, y, Times[float64], Plus[float64], 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Z"}, names(res.Order()))
	assert.Empty(t, res.NodesOf(y))
	var regressTests = []struct {
		x, z     int
		expected float64
	}{
		{0, 0, 19},
		{0, 1, 22},
		{1, 0, 43},
		{1, 1, 50},
	}
	for _, tt := range regressTests {
		actual := mustEval(t, res, map[*Variable]int{x: tt.x, z: tt.z})
		assert.Equal(t, tt.expected, actual, "X=%d, Z=%d", tt.x, tt.z)
	}
}

// TestRetrogradeCombine combines two diagrams with reversed orders, so that
// every variable of the follower below its root is retrograde.
func TestRetrogradeCombine(t *testing.T) {
	x := NewVariable("X", 3)
	y := NewVariable("Y", 2)
	z := NewVariable("Z", 2)
	a, _ := Build([]*Variable{x, y, z}, func(inst []int) int { return inst[0] + inst[1]*inst[2] })
	b, _ := Build([]*Variable{z, y, x}, func(inst []int) int { return 10*inst[0] + 3*inst[1] - inst[2] })
	var s Stats
	res, err := Combine[int](a, b, Times[int], Statistics(&s))
	require.NoError(t, err)
	fused := []*Variable{x, y, z}
	assert.Equal(t, names(fused), names(res.Order()))
	exp := expected(t, fused, func(inst map[*Variable]int) int {
		return mustEval(t, a, inst) * mustEval(t, b, inst)
	})
	sameFunction(t, fused, exp, res)
	assert.Greater(t, s.Explored, 0)
	assert.Equal(t, res.Produced(), s.Produced)
}

func TestCombineRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	pool := randompool()
	for i := 0; i < 300; i++ {
		lo, fo := randomorder(r, pool), randomorder(r, pool)
		l := randomdiagram(t, r, lo, 3)
		f := randomdiagram(t, r, fo, 3)
		op := intOperators[i%len(intOperators)]
		var s Stats
		res, err := Combine[int](l, f, op.op, Statistics(&s))
		require.NoError(t, err, "iteration %d", i)
		fused := FuseOrder(lo, fo)
		require.Equal(t, names(fused), names(res.Order()))
		exp := expected(t, fused, func(inst map[*Variable]int) int {
			return op.op(mustEval(t, l, inst), mustEval(t, f, inst))
		})
		sameFunction(t, fused, exp, res)
		reduced(t, res, s)
	}
}

func TestRegressRandom(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	pool := randompool()
	projections := []struct {
		name    string
		op      func(int, int) int
		neutral int
	}{
		{"sum", Plus[int], 0},
		{"max", Max[int], -1},
		{"product", Times[int], 1},
	}
	for i := 0; i < 300; i++ {
		lo, fo := randomorder(r, pool), randomorder(r, pool)
		union := FuseOrder(lo, fo)
		if len(union) == 0 {
			continue
		}
		l := randomdiagram(t, r, lo, 3)
		f := randomdiagram(t, r, fo, 3)
		target := union[r.Intn(len(union))]
		var primed []*Variable
		for _, v := range union {
			if r.Intn(4) == 0 {
				primed = append(primed, v)
			}
		}
		cop := intOperators[i%len(intOperators)]
		pop := projections[i%len(projections)]
		var s Stats
		res, err := Regress[int](l, f, primed, target, cop.op, pop.op, pop.neutral, Statistics(&s))
		require.NoError(t, err, "iteration %d", i)

		var order []*Variable
		for _, v := range FuseOrder(lo, fo, primed...) {
			if v != target {
				order = append(order, v)
			}
		}
		require.Equal(t, names(order), names(res.Order()))
		exp := expected(t, order, func(inst map[*Variable]int) int {
			acc := pop.neutral
			for m := 0; m < target.Size(); m++ {
				inst[target] = m
				acc = pop.op(acc, cop.op(mustEval(t, l, inst), mustEval(t, f, inst)))
			}
			delete(inst, target)
			return acc
		})
		sameFunction(t, order, exp, res)
		reduced(t, res, s)
	}
}

// TestRegressUntestedTarget checks that the projection counts every modality
// of the target, even when no operand tests it on a path.
func TestRegressUntestedTarget(t *testing.T) {
	x := NewVariable("X", 2)
	y := NewVariable("Y", 3)
	a, _ := Build([]*Variable{x, y}, func(inst []int) int {
		if inst[0] == 0 {
			return 2
		}
		return inst[1]
	})
	b, _ := New[int](nil)
	b.SetRoot(b.AddTerminalNode(1))
	res, err := Regress[int](a, b, nil, y, Times[int], Plus[int], 0)
	require.NoError(t, err)
	assert.Equal(t, 6, mustEval(t, res, map[*Variable]int{x: 0}))
	assert.Equal(t, 3, mustEval(t, res, map[*Variable]int{x: 1}))
}

func TestLargeDomain(t *testing.T) {
	const last = 39999
	x := NewVariable("X", last+1)
	y := NewVariable("Y", 2)
	a, _ := New[int]([]*Variable{x, y})
	ay, err := a.AddNode(y, a.AddTerminalNode(1), a.AddTerminalNode(2))
	require.NoError(t, err)
	ax, err := a.AddInternalNode(x, map[int]NodeID{last: ay}, a.AddTerminalNode(0))
	require.NoError(t, err)
	require.NoError(t, a.SetRoot(ax))

	b, _ := New[int]([]*Variable{y, x})
	bx, err := b.AddInternalNode(x, map[int]NodeID{last: b.AddTerminalNode(10)}, b.AddTerminalNode(0))
	require.NoError(t, err)
	by, err := b.AddNode(y, bx, b.AddTerminalNode(5))
	require.NoError(t, err)
	require.NoError(t, b.SetRoot(by))

	res, err := Combine[int](a, b, Plus[int])
	require.NoError(t, err)
	for _, tc := range []struct{ x, y, want int }{
		{last, 0, 11},
		{last, 1, 7},
		{0, 0, 0},
		{0, 1, 5},
		{32768, 1, 5},
		{last - 1, 0, 0},
	} {
		assert.Equal(t, tc.want, mustEval(t, res, map[*Variable]int{x: tc.x, y: tc.y}), "X=%d Y=%d", tc.x, tc.y)
	}

	sum, err := Regress[int](a, b, nil, x, Plus[int], Plus[int], 0)
	require.NoError(t, err)
	assert.Equal(t, 11, mustEval(t, sum, map[*Variable]int{y: 0}))
	assert.Equal(t, 7+5*last, mustEval(t, sum, map[*Variable]int{y: 1}))
}

func TestNocache(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	pool := randompool()
	for i := 0; i < 50; i++ {
		lo, fo := randomorder(r, pool), randomorder(r, pool)
		l := randomdiagram(t, r, lo, 2)
		f := randomdiagram(t, r, fo, 2)
		var s1, s2 Stats
		res1, err := Combine[int](l, f, Plus[int], Statistics(&s1))
		require.NoError(t, err)
		res2, err := Combine[int](l, f, Plus[int], Statistics(&s2), Nocache())
		require.NoError(t, err)
		assert.Zero(t, s2.MemoHits)
		assert.Zero(t, s2.Memoized)
		assert.Equal(t, s1.Explored, s1.Memoized)
		assert.GreaterOrEqual(t, s2.Explored, s1.Explored)
		sameFunction(t, FuseOrder(lo, fo), res1, res2)
	}
}

func TestCombineMemory(t *testing.T) {
	x := NewVariable("X", 2)
	y := NewVariable("Y", 2)
	a, _ := Build([]*Variable{x}, func(inst []int) int { return inst[0] })
	b, _ := Build([]*Variable{y}, func(inst []int) int { return 2 * inst[0] })
	res, err := Combine[int](a, b, Plus[int], Maxnodesize(1))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrMemory))
	res, err = Combine[int](a, b, Plus[int], Maxnodesize(3))
	require.NoError(t, err)
	assert.Equal(t, 3, mustEval(t, res, map[*Variable]int{x: 1, y: 1}))
}

func TestCombineLogger(t *testing.T) {
	x := NewVariable("X", 2)
	a, _ := Build([]*Variable{x}, func(inst []int) int { return inst[0] })
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := Combine[int](a, a, Plus[int], Logger(logger))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "combine done")
}

//********************************************************************************************

// fakeview is a hand-written View used to test the validation of operands.
type fakeview struct {
	order  []*Variable
	root   NodeID
	vars   map[NodeID]*Variable
	sons   map[NodeID]map[int]NodeID
	defs   map[NodeID]NodeID
	values map[NodeID]int
	hidden map[NodeID]bool // nodes missing from NodesOf
}

func (f *fakeview) Root() NodeID { return f.root }

func (f *fakeview) IsTerminal(n NodeID) bool {
	_, ok := f.values[n]
	return ok
}

func (f *fakeview) Value(n NodeID) int { return f.values[n] }

func (f *fakeview) Var(n NodeID) *Variable { return f.vars[n] }

func (f *fakeview) Son(n NodeID, m int) NodeID {
	if s, ok := f.sons[n][m]; ok {
		return s
	}
	return NoNode
}

func (f *fakeview) Default(n NodeID) NodeID {
	if s, ok := f.defs[n]; ok {
		return s
	}
	return NoNode
}

func (f *fakeview) HasDefault(n NodeID) bool { return f.Default(n) != NoNode }

func (f *fakeview) Order() []*Variable { return f.order }

func (f *fakeview) NodesOf(v *Variable) []NodeID {
	res := []NodeID{}
	for n, w := range f.vars {
		if w == v && !f.hidden[n] {
			res = append(res, n)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// newfakeview returns a view over x and y: node 2 tests x, with an arc to
// node 3 (testing y) for modality 0 and a default arc to terminal 1.
func newfakeview(x, y *Variable) *fakeview {
	return &fakeview{
		order:  []*Variable{x, y},
		root:   2,
		vars:   map[NodeID]*Variable{2: x, 3: y},
		sons:   map[NodeID]map[int]NodeID{2: {0: 3}, 3: {0: 0, 1: 1}},
		defs:   map[NodeID]NodeID{2: 1},
		values: map[NodeID]int{0: 10, 1: 20},
	}
}

func TestCombineView(t *testing.T) {
	x := NewVariable("X", 3)
	y := NewVariable("Y", 2)
	f := newfakeview(x, y)
	one, _ := New[int](nil)
	one.SetRoot(one.AddTerminalNode(1))
	res, err := Combine[int](f, one, Plus[int])
	require.NoError(t, err)
	assert.Equal(t, 11, mustEval(t, res, map[*Variable]int{x: 0, y: 0}))
	assert.Equal(t, 21, mustEval(t, res, map[*Variable]int{x: 0, y: 1}))
	assert.Equal(t, 21, mustEval(t, res, map[*Variable]int{x: 2}))
}

func TestMalformed(t *testing.T) {
	x := NewVariable("X", 3)
	y := NewVariable("Y", 2)
	z := NewVariable("Z", 2)
	one, _ := New[int](nil)
	one.SetRoot(one.AddTerminalNode(1))

	var malformedTests = []struct {
		name   string
		change func(f *fakeview)
	}{
		{"no root", func(f *fakeview) { f.root = NoNode }},
		{"missing modality without default", func(f *fakeview) { delete(f.defs, 2) }},
		{"partial node", func(f *fakeview) { delete(f.sons[3], 1) }},
		{"variable not in order", func(f *fakeview) { f.order = []*Variable{x} }},
		{"arc against the order", func(f *fakeview) { f.order = []*Variable{y, x} }},
		{"unlisted node", func(f *fakeview) { f.hidden = map[NodeID]bool{3: true} }},
		{"nil variable in order", func(f *fakeview) { f.order = []*Variable{x, nil, y} }},
	}
	for _, tt := range malformedTests {
		f := newfakeview(x, y)
		tt.change(f)
		_, err := Combine[int](f, one, Plus[int])
		assert.True(t, IsMalformed(err), "%s: combine(f, 1) returned %v", tt.name, err)
		_, err = Combine[int](one, f, Plus[int])
		assert.True(t, IsMalformed(err), "%s: combine(1, f) returned %v", tt.name, err)
	}

	f := newfakeview(x, y)
	_, err := Regress[int](f, one, nil, z, Times[int], Plus[int], 0)
	assert.True(t, IsMalformed(err), "target absent from both operands")
	_, err = Regress[int](f, one, nil, nil, Times[int], Plus[int], 0)
	assert.True(t, IsMalformed(err), "nil target")
	_, err = Regress[int](f, one, nil, x, Times[int], nil, 0)
	assert.True(t, IsMalformed(err), "nil projection")
	_, err = Combine[int](f, one, nil)
	assert.True(t, IsMalformed(err), "nil operator")
	_, err = Combine[int](nil, one, Plus[int])
	assert.True(t, IsMalformed(err), "nil operand")
}
