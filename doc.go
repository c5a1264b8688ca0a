// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package fgraph defines a concrete type for ordered, multi-valued decision
diagrams (also called function graphs), a data structure used to represent
functions from the assignments of a fixed set of discrete variables to scalar
values. Function graphs are the symbolic backbone used to compose transition,
cost and reward functions in factored MDPs and to fuse potentials compactly.

Basics

Each Diagram has a total order over its variables, declared when it is
initialized (using the function New). Every path from the root to a terminal
visits variables in strictly increasing order, skipping the variables that are
not tested. A Variable has a finite domain; the values in this domain are
called modalities and are represented by integers in the interval [0..Size).

We use integers (type NodeID) to represent the address of nodes. A node is
either a terminal, holding a value of the scalar type T, or an internal node
labelled by a Variable, with an arc for each modality. To keep diagrams
compact, an internal node may have a default arc that stands for all the
modalities without an explicit arc.

Nodes are created through the diagram itself, which plays the role of the
manager: it keeps a unicity table so that two isomorphic sub-graphs are always
represented by the same NodeID. Nodes are never mutated after their creation.

Combining diagrams

The main operations of the package are Combine and Regress. Combine computes
the pointwise combination of two diagrams that may have different variable
orders. Regress is a combination fused with the elimination (projection) of a
single variable, which is the basic step of value iteration over factored MDPs.
Both operations first compute a fused order (see FuseOrder), then find, for
every node of the inputs, which variables must be instantiated before
descending into the node because they are tested later in the input but
earlier in the fused order (we call them retrograde variables). The result is
built with a single recursive traversal, memoized on the part of the
instantiation context that can still influence the result.

Observability

The library logs at the Debug level using log/slog (see option Logger) and
exports Prometheus counters for the number of operations, memo hits and
misses, and produced nodes.
*/
package fgraph
