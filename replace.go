// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

// Replace returns a new diagram computing the same function as b after
// substituting variable v with r[v], for every v in the domain of r. A
// variable and its image must have the same domain size. The image of a
// variable takes its position in the order, so that the structure of the
// diagram is unchanged. This is typically used to build the primed version of
// a function before a call to Regress.
//
// We return an error if b has no root, if the sizes of a variable and its
// image differ, or if the resulting order has a duplicate variable.
func (b *Diagram[T]) Replace(r map[*Variable]*Variable, options ...Option) (*Diagram[T], error) {
	if b.root == NoNode {
		return nil, newError("Replace", ErrMalformed, "diagram has no root")
	}
	order := make([]*Variable, len(b.order))
	for k, v := range b.order {
		order[k] = v
		w, ok := r[v]
		if !ok {
			continue
		}
		if w == nil {
			return nil, newError("Replace", ErrMalformed, "nil image for variable %s", v)
		}
		if w.size != v.size {
			return nil, newError("Replace", ErrMalformed, "variable %s (%d modalities) replaced by %s (%d modalities)", v, v.size, w, w.size)
		}
		order[k] = w
	}
	res, err := New[T](order, options...)
	if err != nil {
		return nil, err
	}
	image := make(map[NodeID]NodeID)
	var replace func(n NodeID) (NodeID, error)
	replace = func(n NodeID) (NodeID, error) {
		if id, ok := image[n]; ok {
			return id, nil
		}
		var err error
		nd := b.nodes[n]
		if nd.kind == kterminal {
			image[n] = res.AddTerminalNode(nd.value)
			return image[n], nil
		}
		sons := make([]NodeID, len(nd.sons))
		for m, s := range nd.sons {
			sons[m] = NoNode
			if s == NoNode {
				continue
			}
			if sons[m], err = replace(s); err != nil {
				return NoNode, err
			}
		}
		def := NoNode
		if nd.def != NoNode {
			if def, err = replace(nd.def); err != nil {
				return NoNode, err
			}
		}
		id, err := res.makenode("Replace", order[b.pos[nd.v]], sons, def)
		if err != nil {
			return NoNode, err
		}
		image[n] = id
		return id, nil
	}
	root, err := replace(b.root)
	if err != nil {
		return nil, err
	}
	res.root = root
	return res, nil
}
