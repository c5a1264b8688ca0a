// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import (
	"io"
	"log/slog"
)

// configs is used to store the values of different parameters of diagrams and
// operations.
type configs struct {
	nodesize    int          // initial capacity of the node table
	maxnodesize int          // maximum total number of nodes (0 if no limit)
	cachesize   int          // initial size of the memo tables
	nocache     bool         // disable memoization during combinations
	logger      *slog.Logger // destination of debug logs
	stats       *Stats       // where to report operation statistics (can be nil)
}

// Option is the type of configuration options accepted by New, Build, Combine
// and Regress.
type Option func(*configs)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func makeconfigs(options []Option) *configs {
	c := &configs{
		nodesize:  _DEFAULTNODESIZE,
		cachesize: _DEFAULTCACHESIZE,
		logger:    discard,
	}
	for _, f := range options {
		f(c)
	}
	return c
}

// Nodesize is a configuration option (function). Used as a parameter in New it
// sets a preferred initial capacity for the node table. The table grows during
// computation when needed.
func Nodesize(size int) Option {
	return func(c *configs) {
		if size > 0 {
			c.nodesize = size
		}
	}
}

// Maxnodesize is a configuration option (function). Used as a parameter in New
// (or in an operation producing a new diagram) it sets a limit to the number
// of nodes in the diagram. An operation trying to raise the number of nodes
// above this limit fails with an error wrapping ErrMemory. The default value
// (0) means that there is no limit.
func Maxnodesize(size int) Option {
	return func(c *configs) {
		c.maxnodesize = size
	}
}

// Cachesize is a configuration option (function). It sets the initial number
// of entries in the memo tables used by Combine, Regress and Apply.
func Cachesize(size int) Option {
	return func(c *configs) {
		if size > 0 {
			c.cachesize = size
		}
	}
}

// Nocache is a configuration option (function) that disables memoization
// during Combine and Regress. The result is the same, but the number of
// explored sub-problems can grow exponentially. It is mostly useful for
// testing.
func Nocache() Option {
	return func(c *configs) {
		c.nocache = true
	}
}

// Logger is a configuration option (function) that sets the logger used for
// debug messages. By default nothing is logged.
func Logger(l *slog.Logger) Option {
	return func(c *configs) {
		if l != nil {
			c.logger = l
		}
	}
}

// Statistics is a configuration option (function). Used as a parameter in
// Combine or Regress, the statistics of the operation are stored in s when
// the operation ends.
func Statistics(s *Stats) Option {
	return func(c *configs) {
		c.stats = s
	}
}
