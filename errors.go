// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package fgraph

import (
	"errors"
	"fmt"
	"log/slog"
)

// Errors reported by the library are of type *Error and wrap one of the
// following sentinel values, so that callers can test them with errors.Is.
var (
	// ErrMalformed is for inputs that do not denote a valid diagram: missing
	// root, a node with neither a full set of arcs nor a default arc, arcs that
	// do not follow the variable order, a target variable that is absent from
	// both inputs, ...
	ErrMalformed = errors.New("malformed diagram")

	// ErrInvariant is for violations of an internal invariant detected during
	// a computation. They are programming or data errors and abort the whole
	// operation.
	ErrInvariant = errors.New("invariant violation")

	// ErrMemory is returned when adding a node would exceed the maximal size
	// of the node table (see option Maxnodesize).
	ErrMemory = errors.New("unable to add node, diagram at max capacity")

	// ErrUnknownVariable is returned when a variable is not part of the order
	// of a diagram.
	ErrUnknownVariable = errors.New("unknown variable")
)

// Error is the type of errors returned by the operations of the package.
type Error struct {
	Op   string // operation that failed, e.g. "combine" or "AddInternalNode"
	Kind error  // one of the sentinel errors
	Msg  string // human-readable description
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// IsMalformed returns true if err (or an error it wraps) reports a malformed
// input.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// IsInvariant returns true if err (or an error it wraps) reports an invariant
// violation.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}

func newError(op string, kind error, format string, a ...interface{}) *Error {
	return &Error{Op: op, Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

// errstate is embedded in structures that keep an error status during a
// recursive computation. Only the first error is recorded; we stop the
// computation as soon as possible after that.
type errstate struct {
	err error
	log *slog.Logger
}

func (s *errstate) seterror(op string, kind error, format string, a ...interface{}) NodeID {
	if s.err != nil {
		return NoNode
	}
	s.err = newError(op, kind, format, a...)
	if s.log != nil {
		s.log.Debug("operation failed", "op", op, "error", s.err)
	}
	return NoNode
}

// errored returns true if there was an error during the computation.
func (s *errstate) errored() bool {
	return s.err != nil
}
