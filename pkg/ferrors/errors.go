// Package ferrors defines fozzy's closed error taxonomy. Every failure
// surfaced by the analysis core carries one of the Kind values below so
// callers can classify a failure without string matching.
package ferrors

import (
	"errors"
	"fmt"
)

// Kind is a closed enumeration of fozzy error categories.
type Kind int

const (
	// Config indicates a malformed configuration. The core itself never
	// loads configuration, but surfaces this kind when a caller-supplied
	// config value fails validation.
	Config Kind = iota
	// Io indicates a filesystem failure, bubbled up verbatim.
	Io
	// Json indicates a structural parse error on a trace or derived artifact.
	Json
	// InvalidArgument indicates an unresolvable selector, a missing trace
	// for an operation that requires one, or a rejected strict-mode request.
	InvalidArgument
	// Scenario indicates a schema-level failure on an embedded scenario document.
	Scenario
	// Trace indicates a schema-level failure on the trace artifact itself.
	Trace
	// Report indicates a schema-level failure on a derived report document.
	Report
	// Zip indicates a failure in corpus import/export, out of scope for
	// this module but retained in the taxonomy for completeness.
	Zip
)

// String renders the Kind the way it appears in error messages.
func (k Kind) String() string {
	switch k {
	case Config:
		return "config error"
	case Io:
		return "io error"
	case Json:
		return "json error"
	case InvalidArgument:
		return "invalid argument"
	case Scenario:
		return "scenario error"
	case Trace:
		return "trace error"
	case Report:
		return "report error"
	case Zip:
		return "zip error"
	default:
		return "error"
	}
}

// Error wraps an inner error with a Kind, the way FozzyError wraps std::io::Error
// and serde_json::Error in the original implementation.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}

	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}

	return e.Kind.String()
}

// Unwrap exposes the wrapped error so errors.Is/errors.As compose.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a new Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds a new Error of the given kind wrapping an existing error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}

	return false
}
