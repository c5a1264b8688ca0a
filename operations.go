// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import (
	"errors"
	"time"
)

// engine stores the state of a call to Combine or Regress. It is created for a
// single operation and discarded at the end: the memo table is only valid for
// the instantiation context of this operation.
type engine[T comparable] struct {
	errstate
	op       string       // name of the operation, for errors and logs
	leader   View[T]      // first operand, wins ties in the fused order
	follower View[T]      // second operand
	combine  func(T, T) T // combination operator
	out      *Diagram[T]  // result

	fused  []*Variable       // fused variable order
	fpos   map[*Variable]int // position of each variable in fused
	lretro *retrograde       // retrograde sets of the leader
	fretro *retrograde       // retrograde sets of the follower
	target int               // position of the eliminated variable in fused, -1 for Combine

	ctx   *instantiation // current instantiation context
	memo  *memocache     // memo table, only valid for this operation
	kbuff []byte         // buffer used to compute memo keys
	stats Stats

	project *applier[T] // projection (Regress only)
	neutral NodeID      // terminal of out holding the neutral element of project
}

// Combine returns a new diagram computing op(leader(x), follower(x)) for every
// assignment x of the variables of the two operands. The operands may have
// different variable orders; the order of the result is computed with
// FuseOrder(leader.Order(), follower.Order()).
//
// We return an error, before starting any computation, if one of the operands
// is malformed: no root, or a node with neither an arc for every modality nor a
// default arc. The result is canonical but may contain unreachable nodes and
// untested variables; use Clean to remove them.
func Combine[T comparable](leader, follower View[T], op func(T, T) T, options ...Option) (*Diagram[T], error) {
	c := makeconfigs(options)
	start := time.Now()
	e, err := newengine("combine", leader, follower, op, nil, nil, c)
	if err != nil {
		observe("combine", start, nil, err)
		return nil, err
	}
	res, err := e.run(c)
	observe("combine", start, &e.stats, err)
	return res, err
}

// Regress returns a new diagram computing, for every assignment x of the
// variables of the two operands except target,
//
//	pop(...pop(pop(neutral, cop(leader(x_0), follower(x_0))), cop(leader(x_1), follower(x_1)))...)
//
// where x_m is x extended with target = m. This is a combination fused with the
// elimination of variable target, done in a single traversal. The variables in
// primed are placed as late as possible in the fused order (see FuseOrder).
// The target variable never appears in the order of the result.
//
// We return an error if the target variable does not appear in the order of
// any of the operands.
func Regress[T comparable](leader, follower View[T], primed []*Variable, target *Variable, cop, pop func(T, T) T, neutral T, options ...Option) (*Diagram[T], error) {
	c := makeconfigs(options)
	start := time.Now()
	if target == nil {
		err := newError("regress", ErrMalformed, "nil target variable")
		observe("regress", start, nil, err)
		return nil, err
	}
	if pop == nil {
		err := newError("regress", ErrMalformed, "nil projection operator")
		observe("regress", start, nil, err)
		return nil, err
	}
	e, err := newengine("regress", leader, follower, cop, primed, target, c)
	if err != nil {
		observe("regress", start, nil, err)
		return nil, err
	}
	e.project = newapplier(e.out, pop, c)
	e.neutral = e.out.AddTerminalNode(neutral)
	res, err := e.run(c)
	e.stats.ApplyHits = e.project.hits
	e.stats.ApplyMiss = e.project.miss
	if c.stats != nil {
		*c.stats = e.stats
	}
	observe("regress", start, &e.stats, err)
	return res, err
}

// ************************************************************

func newengine[T comparable](op string, leader, follower View[T], combine func(T, T) T, primed []*Variable, target *Variable, c *configs) (*engine[T], error) {
	if leader == nil || follower == nil {
		return nil, newError(op, ErrMalformed, "nil operand")
	}
	if combine == nil {
		return nil, newError(op, ErrMalformed, "nil combination operator")
	}
	if err := check(op, "leader", leader); err != nil {
		return nil, err
	}
	if err := check(op, "follower", follower); err != nil {
		return nil, err
	}
	e := &engine[T]{
		errstate: errstate{log: c.logger},
		op:       op,
		leader:   leader,
		follower: follower,
		combine:  combine,
		target:   -1,
	}
	e.fused = FuseOrder(leader.Order(), follower.Order(), primed...)
	e.fpos = make(map[*Variable]int, len(e.fused))
	for k, v := range e.fused {
		e.fpos[v] = k
	}
	order := e.fused
	if target != nil {
		p, ok := e.fpos[target]
		if !ok {
			return nil, newError(op, ErrMalformed, "target variable %s is absent from both operands", target)
		}
		e.target = p
		order = make([]*Variable, 0, len(e.fused)-1)
		order = append(order, e.fused[:p]...)
		order = append(order, e.fused[p+1:]...)
	}
	var err error
	e.out, err = New[T](order, Nodesize(c.nodesize), Maxnodesize(c.maxnodesize), Logger(c.logger))
	if err != nil {
		return nil, err
	}
	e.lretro = analyze(leader, e.fpos, len(e.fused))
	e.fretro = analyze(follower, e.fpos, len(e.fused))
	e.ctx = newinstantiation(len(e.fused))
	e.memo = newmemocache(c.cachesize, c.nocache)
	return e, nil
}

// check verifies that d is a well-formed operand: it has a root and every node
// reachable from the root tests a variable of the order, is listed among the
// nodes of its variable, has either an arc for each modality or a default arc,
// and only has arcs to nodes testing later variables.
func check[T comparable](op, name string, d View[T]) error {
	root := d.Root()
	if root == NoNode {
		return newError(op, ErrMalformed, "%s has no root", name)
	}
	order := d.Order()
	pos := make(map[*Variable]int, len(order))
	for k, v := range order {
		if v == nil {
			return newError(op, ErrMalformed, "%s has a nil variable at position %d", name, k)
		}
		pos[v] = k
	}
	listed := make(map[NodeID]bool)
	for _, v := range order {
		for _, n := range d.NodesOf(v) {
			listed[n] = true
		}
	}
	level := func(n NodeID) int {
		if d.IsTerminal(n) {
			return _TERMINALPOS
		}
		return pos[d.Var(n)]
	}
	visited := map[NodeID]bool{root: true}
	stack := []NodeID{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if d.IsTerminal(n) {
			continue
		}
		v := d.Var(n)
		if v == nil {
			return newError(op, ErrMalformed, "%s: internal node %d has no variable", name, n)
		}
		p, ok := pos[v]
		if !ok {
			return newError(op, ErrMalformed, "%s: node %d tests variable %s which is not in the order", name, n, v)
		}
		if !listed[n] {
			return newError(op, ErrMalformed, "%s: node %d is not listed among the nodes of %s", name, n, v)
		}
		arcs := make([]NodeID, 0, v.size+1)
		for m := 0; m < v.size; m++ {
			s := d.Son(n, m)
			if s == NoNode {
				if !d.HasDefault(n) {
					return newError(op, ErrMalformed, "%s: node %d (%s) has no arc for modality %d and no default", name, n, v, m)
				}
				continue
			}
			arcs = append(arcs, s)
		}
		if d.HasDefault(n) {
			arcs = append(arcs, d.Default(n))
		}
		for _, s := range arcs {
			if level(s) <= p {
				return newError(op, ErrMalformed, "%s: arc from node %d (%s) to node %d breaks the variable order", name, n, v, s)
			}
			if !visited[s] {
				visited[s] = true
				stack = append(stack, s)
			}
		}
	}
	return nil
}

func (e *engine[T]) run(c *configs) (*Diagram[T], error) {
	e.log.Debug(e.op+" start", "order", len(e.fused), "target", e.target)
	root := e.step(e.leader.Root(), e.follower.Root())
	e.stats.Produced = e.out.Produced()
	e.stats.Memoized = e.memo.len()
	if c.stats != nil {
		*c.stats = e.stats
	}
	if e.err != nil {
		return nil, e.err
	}
	e.out.root = root
	e.log.Debug(e.op+" done",
		"nodes", e.out.Size(),
		"explored", e.stats.Explored,
		"hits", e.stats.MemoHits,
		"memo", e.stats.Memoized)
	return e.out, nil
}

// ************************************************************

// position returns the position in the fused order of the variable tested by
// n, or _TERMINALPOS if n is a terminal.
func (e *engine[T]) position(d View[T], n NodeID) int {
	if d.IsTerminal(n) {
		return _TERMINALPOS
	}
	return e.fpos[d.Var(n)]
}

// settle follows the arcs of n, in operand d, for as long as n tests a
// variable already instantiated in the context. This guarantees that we branch
// at most once on each variable along a path.
func (e *engine[T]) settle(d View[T], n NodeID) NodeID {
	for !d.IsTerminal(n) {
		v := d.Var(n)
		switch m := e.ctx.value(e.fpos[v]); m {
		case unset:
			return n
		case dflt:
			return e.seterror(e.op, ErrInvariant, "variable %s followed on a default arc is tested again by node %d", v, n)
		default:
			n = viewchild(d, n, int(m))
		}
	}
	return n
}

// step returns the node of the result corresponding to the pair of nodes
// (a, b) in the current context.
func (e *engine[T]) step(a, b NodeID) NodeID {
	if e.errored() {
		return NoNode
	}
	if a = e.settle(e.leader, a); a == NoNode {
		return NoNode
	}
	if b = e.settle(e.follower, b); b == NoNode {
		return NoNode
	}
	eliminated := e.target < 0 || e.ctx.isset(e.target)
	if eliminated && e.leader.IsTerminal(a) && e.follower.IsTerminal(b) {
		e.stats.Terminals++
		return e.out.AddTerminalNode(e.combine(e.leader.Value(a), e.follower.Value(b)))
	}
	relevant := e.lretro.needsof(a).clone()
	relevant.union(e.fretro.needsof(b))
	key := e.key(a, b, relevant)
	if res, ok := e.memo.match(key); ok {
		e.stats.MemoHits++
		return res
	}
	e.stats.Explored++
	// we branch on the variable with the smallest position among: the
	// variables tested by a and b, the retrograde variables of a and b that are
	// not instantiated yet, and the target (if not eliminated yet).
	pa := e.position(e.leader, a)
	pb := e.position(e.follower, b)
	p := min(pa, pb)
	if q := e.ctx.firstunset(relevant); q < p {
		p = q
	}
	if !eliminated && e.target < p {
		p = e.target
	}
	var res NodeID
	switch {
	case p == e.target:
		res = e.eliminate(a, b)
	case p == pa && p == pb:
		res = e.synchronized(a, b, p)
	case p == pa:
		res = e.lead(a, b, p, true)
	case p == pb:
		res = e.lead(a, b, p, false)
	default:
		res = e.anticipate(a, b, p)
	}
	return e.memo.set(key, res)
}

// anticipate branches on every modality of the variable at position p, which
// will be consulted again deeper in one of the operands. We never use a
// default branch here since the value of the variable must be known.
func (e *engine[T]) anticipate(a, b NodeID, p int) NodeID {
	v := e.fused[p]
	defer e.ctx.bind(p, unset)()
	sons := make([]NodeID, v.size)
	for m := range sons {
		e.ctx.set(p, int32(m))
		if sons[m] = e.step(a, b); sons[m] == NoNode {
			return NoNode
		}
	}
	return e.makenode(v, sons, NoNode)
}

// synchronized branches on the variable at position p, tested by both a and
// b. We follow the modalities with an explicit arc in at least one of the two
// nodes, and the default arcs for the remaining ones.
func (e *engine[T]) synchronized(a, b NodeID, p int) NodeID {
	v := e.fused[p]
	if w := e.follower.Var(b); w != e.leader.Var(a) {
		return e.seterror(e.op, ErrInvariant, "synchronized branching on %s and %s", e.leader.Var(a), w)
	}
	defer e.ctx.bind(p, unset)()
	sons := make([]NodeID, v.size)
	missing := false
	for m := range sons {
		sa, sb := e.leader.Son(a, m), e.follower.Son(b, m)
		if sa == NoNode && sb == NoNode {
			sons[m] = NoNode
			missing = true
			continue
		}
		if sa == NoNode {
			sa = e.leader.Default(a)
		}
		if sb == NoNode {
			sb = e.follower.Default(b)
		}
		e.ctx.set(p, int32(m))
		if sons[m] = e.step(sa, sb); sons[m] == NoNode {
			return NoNode
		}
	}
	def := NoNode
	if missing {
		e.ctx.set(p, dflt)
		if def = e.step(e.leader.Default(a), e.follower.Default(b)); def == NoNode {
			return NoNode
		}
	}
	return e.makenode(v, sons, def)
}

// lead branches on the variable at position p, tested only by a (when
// leader is true) or by b, keeping the node of the other operand fixed. If the
// other operand tests the variable deeper, its value will be consulted again,
// so we branch on every modality instead.
func (e *engine[T]) lead(a, b NodeID, p int, leader bool) NodeID {
	d, n, other := e.leader, a, e.fretro.descof(b)
	if !leader {
		d, n, other = e.follower, b, e.lretro.descof(a)
	}
	if other.has(p) {
		return e.anticipate(a, b, p)
	}
	v := e.fused[p]
	defer e.ctx.bind(p, unset)()
	next := func(s NodeID) NodeID {
		if leader {
			return e.step(s, b)
		}
		return e.step(a, s)
	}
	sons := make([]NodeID, v.size)
	missing := false
	for m := range sons {
		s := d.Son(n, m)
		if s == NoNode {
			sons[m] = NoNode
			missing = true
			continue
		}
		e.ctx.set(p, int32(m))
		if sons[m] = next(s); sons[m] == NoNode {
			return NoNode
		}
	}
	def := NoNode
	if missing {
		e.ctx.set(p, dflt)
		if def = next(d.Default(n)); def == NoNode {
			return NoNode
		}
	}
	return e.makenode(v, sons, def)
}

// eliminate enumerates the modalities of the target variable and folds the
// results with the projection operator, starting from the neutral element. No
// node is created for the target.
func (e *engine[T]) eliminate(a, b NodeID) NodeID {
	v := e.fused[e.target]
	defer e.ctx.bind(e.target, unset)()
	acc := e.neutral
	for m := 0; m < v.size; m++ {
		e.ctx.set(e.target, int32(m))
		r := e.step(a, b)
		if r == NoNode {
			return NoNode
		}
		if acc = e.project.apply(acc, r); acc == NoNode {
			if !e.errored() {
				e.err = e.project.err
			}
			return NoNode
		}
	}
	return acc
}

// makenode adds a node to the result. An error other than ErrMemory means that
// we tried to build an ill-formed node, which is an invariant violation.
func (e *engine[T]) makenode(v *Variable, sons []NodeID, def NodeID) NodeID {
	res, err := e.out.makenode(e.op, v, sons, def)
	if err == nil {
		return res
	}
	if !errors.Is(err, ErrMemory) {
		return e.seterror(e.op, ErrInvariant, "building node for %s: %s", v, err)
	}
	if e.err == nil {
		e.err = err
	}
	return NoNode
}
