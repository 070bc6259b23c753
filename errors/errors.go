// Package errors implements the user-facing error type returned by every
// fatal condition in a release.
//
// Library code wraps low-level failures with github.com/pkg/errors and returns
// an *Error once the failure is something the user has to act on: a sandbox
// that cannot be queried, an ambiguous URL, a location alias that never
// terminates. The CLI renders these with Report.
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Type classifies an Error.
type Type int

const (
	// Unknown errors are unforeseen failures.
	Unknown Type = iota
	// User errors are caused by bad input or configuration.
	User
	// Exec errors mean an external command could not be started.
	Exec
	// Command errors mean a VCS command that changes state (commit, tag,
	// switch, clone, push) failed.
	Command
	// Query errors mean a VCS command that reports sandbox or repository state
	// failed, so the real state is unknown.
	Query
	// Ambiguity errors mean more than one backend matched and the user must
	// pick one.
	Ambiguity
	// Invariant errors mean a value cannot be derived from the current state,
	// e.g. a tag URL for a sandbox that is not on trunk, a branch or a tag.
	Invariant
	// Recursion errors mean a location alias exceeded the expansion bound.
	Recursion
)

func (t Type) String() string {
	switch t {
	case User:
		return "user"
	case Exec:
		return "exec"
	case Command:
		return "command"
	case Query:
		return "query"
	case Ambiguity:
		return "ambiguity"
	case Invariant:
		return "invariant"
	case Recursion:
		return "recursion"
	default:
		return "unknown"
	}
}

// Error is an application-level error with optional troubleshooting text.
type Error struct {
	Cause           error
	Type            Type
	Message         string
	Troubleshooting string
}

// Error implements error.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Type.String() + " error"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the cause, for use with errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error of type t with a formatted message.
func New(t Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    t,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error of type t with a formatted message and a cause.
func Wrap(cause error, t Type, format string, args ...interface{}) *Error {
	return &Error{
		Cause:   cause,
		Type:    t,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithTroubleshooting sets the troubleshooting text and returns e.
func (e *Error) WithTroubleshooting(format string, args ...interface{}) *Error {
	e.Troubleshooting = fmt.Sprintf(format, args...)
	return e
}

// Is reports whether err's chain contains an *Error of type t.
func Is(err error, t Type) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Type == t {
			return true
		}
		err = pkgerrors.Unwrap(err)
	}
	return false
}
