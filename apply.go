// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

// Apply returns the node of d computing op(x, y) pointwise, where x and y are
// two nodes of d. Since the two operands share the same variable order, this
// is the classic Apply operation: we always branch on the smallest variable of
// the two operands.
func Apply[T comparable](d *Diagram[T], x, y NodeID, op func(T, T) T, options ...Option) (NodeID, error) {
	if op == nil {
		return NoNode, newError("Apply", ErrMalformed, "nil operator")
	}
	if !d.valid(x) {
		return NoNode, newError("Apply", ErrMalformed, "wrong left operand (%d)", x)
	}
	if !d.valid(y) {
		return NoNode, newError("Apply", ErrMalformed, "wrong right operand (%d)", y)
	}
	c := makeconfigs(options)
	a := newapplier(d, op, c)
	res := a.apply(x, y)
	if c.stats != nil {
		c.stats.ApplyHits = a.hits
		c.stats.ApplyMiss = a.miss
	}
	return res, a.err
}

// applier stores the state of an Apply operation.
type applier[T comparable] struct {
	errstate
	d     *Diagram[T]
	op    func(T, T) T
	cache *applycache
	hits  int
	miss  int
}

func newapplier[T comparable](d *Diagram[T], op func(T, T) T, c *configs) *applier[T] {
	return &applier[T]{
		errstate: errstate{log: c.logger},
		d:        d,
		op:       op,
		cache:    newapplycache(c.cachesize),
	}
}

func (a *applier[T]) apply(x, y NodeID) NodeID {
	if a.errored() {
		return NoNode
	}
	d := a.d
	if d.IsTerminal(x) && d.IsTerminal(y) {
		return d.AddTerminalNode(a.op(d.Value(x), d.Value(y)))
	}
	if res, ok := a.cache.match(x, y); ok {
		a.hits++
		return res
	}
	a.miss++
	lx, ly := d.level(x), d.level(y)
	tx, ty := lx <= ly, ly <= lx // which operands test the smallest variable
	var v *Variable
	if tx {
		v = d.nodes[x].v
	} else {
		v = d.nodes[y].v
	}
	sons := make([]NodeID, v.size)
	missing := false
	for m := range sons {
		sx, sy := x, y
		explicit := false
		if tx {
			sx = d.nodes[x].sons[m]
			explicit = sx != NoNode
			if !explicit {
				sx = d.nodes[x].def
			}
		}
		if ty {
			sy = d.nodes[y].sons[m]
			if sy != NoNode {
				explicit = true
			} else {
				sy = d.nodes[y].def
			}
		}
		if !explicit {
			sons[m] = NoNode
			missing = true
			continue
		}
		if sons[m] = a.apply(sx, sy); sons[m] == NoNode {
			return NoNode
		}
	}
	def := NoNode
	if missing {
		// every operand testing v has a default arc
		dx, dy := x, y
		if tx {
			dx = d.nodes[x].def
		}
		if ty {
			dy = d.nodes[y].def
		}
		if def = a.apply(dx, dy); def == NoNode {
			return NoNode
		}
	}
	res, err := d.makenode("Apply", v, sons, def)
	if err != nil {
		a.err = err
		return NoNode
	}
	return a.cache.set(x, y, res)
}
