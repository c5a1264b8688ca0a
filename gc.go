// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

// marknodes returns a slice where entry n is true if and only if node n is
// reachable from the root of b.
func (b *Diagram[T]) marknodes() []bool {
	marked := make([]bool, len(b.nodes))
	if b.root == NoNode {
		return marked
	}
	stack := []NodeID{b.root}
	marked[b.root] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if b.nodes[n].kind != kinternal {
			continue
		}
		push := func(s NodeID) {
			if s != NoNode && !marked[s] {
				marked[s] = true
				stack = append(stack, s)
			}
		}
		for _, s := range b.nodes[n].sons {
			push(s)
		}
		push(b.nodes[n].def)
	}
	return marked
}

// Clean reclaims all the nodes that are not reachable from the root of the
// diagram and removes from the order the variables that are no longer tested.
// Reachable nodes keep their id; freed slots are reused by later insertions.
func (b *Diagram[T]) Clean() {
	marked := b.marknodes()
	freed := 0
	// we do a pass through the nodes list to void the unmarked nodes. After
	// finishing this pass, b.freepos points to the first free position in
	// b.nodes, or it is NoNode if we found none.
	b.freepos = NoNode
	b.freenum = 0
	for n := len(b.nodes) - 1; n >= 0; n-- {
		nd := &b.nodes[n]
		if marked[n] {
			continue
		}
		switch nd.kind {
		case kterminal:
			if NodeID(n) == b.nan {
				b.nan = NoNode
			} else {
				delete(b.terminals, nd.value)
			}
			freed++
		case kinternal:
			delete(b.unique, b.nodekey(nd.v, nd.sons, nd.def))
			b.internal--
			freed++
		}
		*nd = node[T]{kind: kfree, def: b.freepos}
		b.freepos = NodeID(n)
		b.freenum++
	}
	// we rebuild the index of nodes by variable and trim the order
	tested := make(map[*Variable]bool, len(b.order))
	b.byvar = make(map[*Variable][]NodeID, len(b.order))
	for n := range b.nodes {
		if b.nodes[n].kind == kinternal {
			v := b.nodes[n].v
			tested[v] = true
			b.byvar[v] = append(b.byvar[v], NodeID(n))
		}
	}
	order := b.order[:0]
	for _, v := range b.order {
		if tested[v] {
			order = append(order, v)
		} else {
			delete(b.pos, v)
		}
	}
	b.order = order
	for k, v := range b.order {
		b.pos[v] = k
	}
	b.log.Debug("clean", "freed", freed, "nodes", b.Size(), "variables", len(b.order))
}

// Reduce computes the canonical form of the diagram reachable from its root:
// redundant nodes (all arcs to the same child) are removed and isomorphic
// sub-graphs are merged. Since nodes are built canonically, Reduce is a fixed
// point on diagrams built with the methods of the package; calling it twice
// never changes anything.
func (b *Diagram[T]) Reduce() error {
	if b.root == NoNode {
		return newError("Reduce", ErrMalformed, "diagram has no root")
	}
	marked := b.marknodes()
	remap := make(map[NodeID]NodeID)
	image := func(n NodeID) NodeID {
		if r, ok := remap[n]; ok {
			return r
		}
		return n
	}
	// we process nodes bottom-up, from the last variable to the first one
	for k := len(b.order) - 1; k >= 0; k-- {
		v := b.order[k]
		for _, n := range b.byvar[v] {
			if !marked[n] {
				continue
			}
			nd := b.nodes[n]
			sons := make([]NodeID, len(nd.sons))
			changed := false
			for m, s := range nd.sons {
				sons[m] = NoNode
				if s != NoNode {
					sons[m] = image(s)
					changed = changed || sons[m] != s
				}
			}
			def := NoNode
			if nd.def != NoNode {
				def = image(nd.def)
				changed = changed || def != nd.def
			}
			if !changed {
				continue
			}
			res, err := b.makenode("Reduce", v, sons, def)
			if err != nil {
				return err
			}
			remap[n] = res
		}
	}
	b.root = image(b.root)
	b.log.Debug("reduce", "remapped", len(remap), "root", b.root)
	return nil
}
