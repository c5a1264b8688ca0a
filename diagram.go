// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import (
	"encoding/binary"
	"fmt"
	"log/slog"
)

// Diagram is an ordered decision diagram over values of type T. It owns an
// arena of nodes, indexed by NodeID, together with a unicity table used to
// associate each (variable, arcs, default) triplet to a single node. A Diagram
// implements the View interface.
//
// A Diagram is not safe for concurrent use.
type Diagram[T comparable] struct {
	order     []*Variable            // variable order
	pos       map[*Variable]int      // position of each variable in the order
	nodes     []node[T]              // List of all the nodes
	unique    map[string]NodeID      // Unicity table for internal nodes
	terminals map[T]NodeID           // Unicity table for terminal nodes
	nan       NodeID                 // terminal for values not equal to themselves (NaN)
	byvar     map[*Variable][]NodeID // internal nodes labelled by each variable
	root      NodeID                 // root of the diagram, NoNode if not set
	freepos   NodeID                 // First free node, NoNode if none
	freenum   int                    // Number of free nodes
	internal  int                    // Number of live internal nodes
	produced  int                    // Total number of new nodes ever produced
	hbuff     []byte                 // Used to compute the key of internal nodes
	fbuff     []NodeID               // Scratch buffer for the arcs of a node
	maxnodes  int                    // Maximum number of internal nodes (0 if no limit)
	log       *slog.Logger
}

// New returns an empty diagram with the given variable order. We return an
// error if the order contains a nil or duplicated variable.
func New[T comparable](order []*Variable, options ...Option) (*Diagram[T], error) {
	c := makeconfigs(options)
	b := &Diagram[T]{
		pos:       make(map[*Variable]int, len(order)),
		nodes:     make([]node[T], 0, c.nodesize),
		unique:    make(map[string]NodeID, c.nodesize),
		terminals: make(map[T]NodeID),
		byvar:     make(map[*Variable][]NodeID, len(order)),
		nan:       NoNode,
		root:      NoNode,
		freepos:   NoNode,
		maxnodes:  c.maxnodesize,
		log:       c.logger,
	}
	for k, v := range order {
		if v == nil {
			return nil, newError("New", ErrMalformed, "nil variable at position %d", k)
		}
		if _, ok := b.pos[v]; ok {
			return nil, newError("New", ErrMalformed, "duplicate variable %s in order", v)
		}
		b.pos[v] = k
	}
	b.order = append([]*Variable(nil), order...)
	return b, nil
}

// Build returns the canonical diagram, with the given order, of the function f.
// Function f is called once for every assignment of the variables in order;
// inst[k] is the modality of variable order[k]. The slice passed to f is reused
// between calls.
func Build[T comparable](order []*Variable, f func(inst []int) T, options ...Option) (*Diagram[T], error) {
	b, err := New[T](order, options...)
	if err != nil {
		return nil, err
	}
	inst := make([]int, len(order))
	var build func(level int) (NodeID, error)
	build = func(level int) (NodeID, error) {
		if level == len(order) {
			return b.AddTerminalNode(f(inst)), nil
		}
		v := order[level]
		sons := make([]NodeID, v.size)
		for m := range sons {
			inst[level] = m
			s, err := build(level + 1)
			if err != nil {
				return NoNode, err
			}
			sons[m] = s
		}
		return b.makenode("Build", v, sons, NoNode)
	}
	root, err := build(0)
	if err != nil {
		return nil, err
	}
	b.root = root
	return b, nil
}

// ************************************************************

// AddTerminalNode returns the terminal node holding value v, creating it if
// needed. Terminal nodes are not accounted for in the Maxnodesize limit. All
// the values that are not equal to themselves, like floating-point NaN, share
// a single terminal.
func (b *Diagram[T]) AddTerminalNode(v T) NodeID {
	if v != v {
		if b.nan == NoNode {
			b.nan = b.alloc()
			b.nodes[b.nan] = node[T]{kind: kterminal, value: v, def: NoNode}
		}
		return b.nan
	}
	if n, ok := b.terminals[v]; ok {
		return n
	}
	n := b.alloc()
	b.nodes[n] = node[T]{kind: kterminal, value: v, def: NoNode}
	b.terminals[v] = n
	return n
}

// AddInternalNode returns the node testing variable v, with an arc to
// sons[m] for every modality m in the map, and a default arc to def for the
// other modalities (use NoNode if there is no default). Nodes are built
// canonically: we may return an existing node, or even one of the children if
// all the modalities lead to the same node.
func (b *Diagram[T]) AddInternalNode(v *Variable, sons map[int]NodeID, def NodeID) (NodeID, error) {
	if v == nil {
		return NoNode, newError("AddInternalNode", ErrMalformed, "nil variable")
	}
	arcs := make([]NodeID, v.size)
	for k := range arcs {
		arcs[k] = NoNode
	}
	for m, s := range sons {
		if m < 0 || m >= v.size {
			return NoNode, newError("AddInternalNode", ErrMalformed, "modality %d out of the domain of %s", m, v)
		}
		arcs[m] = s
	}
	return b.makenode("AddInternalNode", v, arcs, def)
}

// AddNode is a shortcut for AddInternalNode when there is one arc for each
// modality of v, given in order.
func (b *Diagram[T]) AddNode(v *Variable, sons ...NodeID) (NodeID, error) {
	if v == nil {
		return NoNode, newError("AddNode", ErrMalformed, "nil variable")
	}
	if len(sons) != v.size {
		return NoNode, newError("AddNode", ErrMalformed, "%d arcs for variable %s with %d modalities", len(sons), v, v.size)
	}
	return b.makenode("AddNode", v, append([]NodeID(nil), sons...), NoNode)
}

// makenode is the only place where internal nodes are created. The slice sons
// must have length v.size and may be stored in the node table.
func (b *Diagram[T]) makenode(op string, v *Variable, sons []NodeID, def NodeID) (NodeID, error) {
	level, ok := b.pos[v]
	if !ok {
		return NoNode, newError(op, ErrUnknownVariable, "variable %s is not in the order of the diagram", v)
	}
	if len(sons) != v.size {
		return NoNode, newError(op, ErrMalformed, "%d arcs for variable %s with %d modalities", len(sons), v, v.size)
	}
	if def != NoNode {
		if err := b.checkarc(op, level, def); err != nil {
			return NoNode, err
		}
	}
	full := b.fbuff[:0]
	for m, s := range sons {
		if s == NoNode {
			if def == NoNode {
				return NoNode, newError(op, ErrMalformed, "modality %d of %s has no arc and there is no default", m, v)
			}
			s = def
		} else if err := b.checkarc(op, level, s); err != nil {
			return NoNode, err
		}
		full = append(full, s)
	}
	b.fbuff = full
	// check whether children are all equal, in which case we skip the node
	same := true
	for _, s := range full[1:] {
		if s != full[0] {
			same = false
			break
		}
	}
	if same {
		return full[0], nil
	}
	// the default arc is the most frequent child, when it covers at least two
	// modalities; ties are broken using the smallest id.
	def = NoNode
	best := 1
	for k, s := range full {
		count := 1
		for _, t := range full[k+1:] {
			if t == s {
				count++
			}
		}
		if count > best || (count == best && count > 1 && s < def) {
			def = s
			best = count
		}
	}
	for m, s := range full {
		if s == def {
			sons[m] = NoNode
		} else {
			sons[m] = s
		}
	}
	key := b.nodekey(v, sons, def)
	if res, ok := b.unique[key]; ok {
		return res, nil
	}
	if b.maxnodes > 0 && b.internal >= b.maxnodes {
		return NoNode, &Error{Op: op, Kind: ErrMemory, Msg: fmt.Sprintf("limit of %d nodes reached", b.maxnodes)}
	}
	res := b.alloc()
	b.nodes[res] = node[T]{kind: kinternal, v: v, sons: sons, def: def}
	b.unique[key] = res
	b.byvar[v] = append(b.byvar[v], res)
	b.internal++
	return res, nil
}

func (b *Diagram[T]) checkarc(op string, level int, s NodeID) error {
	if !b.valid(s) {
		return newError(op, ErrMalformed, "arc to unknown node %d", s)
	}
	if b.level(s) <= level {
		return newError(op, ErrMalformed, "arc from %s to node %d testing %s breaks the variable order", b.order[level], s, b.nodes[s].v)
	}
	return nil
}

// nodekey computes the key of an internal node in the unicity table. We hash
// the variable id, the default arc and the sons in a byte slice that is reused
// between calls.
func (b *Diagram[T]) nodekey(v *Variable, sons []NodeID, def NodeID) string {
	buf := b.hbuff[:0]
	buf = binary.LittleEndian.AppendUint64(buf, v.id)
	buf = binary.AppendVarint(buf, int64(def))
	for _, s := range sons {
		buf = binary.AppendVarint(buf, int64(s))
	}
	b.hbuff = buf
	return string(buf)
}

// alloc returns the index of a free slot in the node table, growing the table
// if needed.
func (b *Diagram[T]) alloc() NodeID {
	b.produced++
	if b.freepos != NoNode {
		res := b.freepos
		b.freepos = b.nodes[res].def
		b.freenum--
		return res
	}
	b.nodes = append(b.nodes, node[T]{})
	return NodeID(len(b.nodes) - 1)
}

// ************************************************************

// SetRoot sets the root of the diagram.
func (b *Diagram[T]) SetRoot(n NodeID) error {
	if !b.valid(n) {
		return newError("SetRoot", ErrMalformed, "unknown node %d", n)
	}
	b.root = n
	return nil
}

// Root returns the root of the diagram, or NoNode if it has not been set.
func (b *Diagram[T]) Root() NodeID {
	return b.root
}

// IsTerminal returns true if n is a terminal node.
func (b *Diagram[T]) IsTerminal(n NodeID) bool {
	return b.nodes[n].kind == kterminal
}

// Value returns the value held by terminal node n. The result is the zero
// value of T if n is an internal node.
func (b *Diagram[T]) Value(n NodeID) T {
	return b.nodes[n].value
}

// Var returns the variable tested by node n, or nil if n is a terminal.
func (b *Diagram[T]) Var(n NodeID) *Variable {
	return b.nodes[n].v
}

// Son returns the target of the explicit arc for modality m of internal node
// n, or NoNode if the modality is covered by the default arc.
func (b *Diagram[T]) Son(n NodeID, m int) NodeID {
	return b.nodes[n].sons[m]
}

// Default returns the target of the default arc of n, or NoNode.
func (b *Diagram[T]) Default(n NodeID) NodeID {
	if b.nodes[n].kind != kinternal {
		return NoNode
	}
	return b.nodes[n].def
}

// HasDefault returns true if n has a default arc.
func (b *Diagram[T]) HasDefault(n NodeID) bool {
	return b.Default(n) != NoNode
}

// Order returns a copy of the variable order of b.
func (b *Diagram[T]) Order() []*Variable {
	return append([]*Variable(nil), b.order...)
}

// Position returns the position of v in the order of b.
func (b *Diagram[T]) Position(v *Variable) (int, bool) {
	p, ok := b.pos[v]
	return p, ok
}

// NodesOf returns the internal nodes of b labelled by v.
func (b *Diagram[T]) NodesOf(v *Variable) []NodeID {
	return append([]NodeID(nil), b.byvar[v]...)
}

// Size returns the number of nodes (internal and terminal) in the node table.
func (b *Diagram[T]) Size() int {
	return len(b.nodes) - b.freenum
}

// Produced returns the total number of nodes ever produced in b.
func (b *Diagram[T]) Produced() int {
	return b.produced
}

// ************************************************************

// Eval returns the value of the function denoted by b for the assignment inst.
// The assignment must give a modality to every variable tested along the path
// that is followed.
func (b *Diagram[T]) Eval(inst map[*Variable]int) (T, error) {
	var zero T
	if b.root == NoNode {
		return zero, newError("Eval", ErrMalformed, "diagram has no root")
	}
	n := b.root
	for b.nodes[n].kind == kinternal {
		v := b.nodes[n].v
		m, ok := inst[v]
		if !ok {
			return zero, newError("Eval", ErrUnknownVariable, "no value for variable %s", v)
		}
		if m < 0 || m >= v.size {
			return zero, newError("Eval", ErrMalformed, "modality %d out of the domain of %s", m, v)
		}
		n = b.child(n, m)
	}
	return b.nodes[n].value, nil
}
