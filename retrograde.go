// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

// retrograde stores, for every internal node of a diagram, two sets of
// positions in a fused order: desc, the variables tested strictly below the
// node, and needs, the variables below the node that come before the node's own
// variable in the fused order (the retrograde variables). A variable in needs
// must be instantiated before we can descend past the node.
type retrograde struct {
	desc  map[NodeID]bitset
	needs map[NodeID]bitset
	empty bitset
}

// analyze computes the retrograde sets of all the nodes of d, given the
// position of each variable in the fused order. We process the variables of d
// from the last to the first, so that the sets of the children of a node are
// known when we reach it, then propagate the needs of each node to its
// children.
func analyze[T comparable](d View[T], fpos map[*Variable]int, size int) *retrograde {
	r := &retrograde{
		desc:  make(map[NodeID]bitset),
		needs: make(map[NodeID]bitset),
		empty: newbitset(size),
	}
	order := d.Order()
	arcs := func(n NodeID, f func(c NodeID)) {
		for m := 0; m < d.Var(n).size; m++ {
			if s := d.Son(n, m); s != NoNode {
				f(s)
			}
		}
		if s := d.Default(n); s != NoNode {
			f(s)
		}
	}
	for k := len(order) - 1; k >= 0; k-- {
		v := order[k]
		p := fpos[v]
		for _, n := range d.NodesOf(v) {
			desc := newbitset(size)
			arcs(n, func(c NodeID) {
				if d.IsTerminal(c) {
					return
				}
				desc.union(r.descof(c))
				desc.set(fpos[d.Var(c)])
			})
			r.desc[n] = desc
			r.needs[n] = desc.below(p)
		}
	}
	for _, v := range order {
		for _, n := range d.NodesOf(v) {
			needs := r.needs[n]
			if needs.empty() {
				continue
			}
			arcs(n, func(c NodeID) {
				if d.IsTerminal(c) {
					return
				}
				if cn, ok := r.needs[c]; ok {
					cn.union(needs.intersect(r.descof(c)))
				}
			})
		}
	}
	return r
}

// descof returns the set of variables below n (empty for terminals).
func (r *retrograde) descof(n NodeID) bitset {
	if s, ok := r.desc[n]; ok {
		return s
	}
	return r.empty
}

// needsof returns the retrograde variables of n (empty for terminals).
func (r *retrograde) needsof(n NodeID) bitset {
	if s, ok := r.needs[n]; ok {
		return s
	}
	return r.empty
}
