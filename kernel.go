// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import "math"

// NodeID is the address of a node in a Diagram.
type NodeID int

// NoNode is the NodeID used for a missing arc, a missing root, or as the result
// of an operation that failed.
const NoNode NodeID = -1

// _DEFAULTNODESIZE is the default capacity of the node table of a new diagram.
const _DEFAULTNODESIZE int = 64

// _DEFAULTCACHESIZE is the default initial number of entries in the memo tables
// used during a combination.
const _DEFAULTCACHESIZE int = 1024

// _TERMINALPOS is the position used for terminal nodes when comparing
// positions in a variable order; terminals are always strictly after any
// variable.
const _TERMINALPOS int = math.MaxInt32

// sentinel values stored in an instantiation context
const (
	unset int32 = -1 // variable not instantiated
	dflt  int32 = -2 // variable instantiated on a default arc
)
