// Package errs defines the error taxonomy shared by every layer of
// scandex, from the storage backend up through the public API surface.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can branch with errors.Is without
// depending on message text.
type Kind string

const (
	InvalidArgument     Kind = "invalid_argument"
	UnknownDocument     Kind = "unknown_document"
	UnknownColumn       Kind = "unknown_column"
	DuplicateDocument   Kind = "duplicate_document"
	DuplicateColumn     Kind = "duplicate_column"
	ReservedName        Kind = "reserved_name"
	TypeMismatch        Kind = "type_mismatch"
	ValueAlreadySet     Kind = "value_already_set"
	InitialDisabled     Kind = "initial_disabled"
	InitialTableConflict Kind = "initial_table_conflict"
	ParseError          Kind = "parse_error"
	BackendError        Kind = "backend_error"
)

// Error is the concrete error type returned by every mutating and
// lookup operation in scandex. The Kind is stable API; Message is
// human-readable detail.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, if any (e.g. a driver error from the backend)
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error of the given kind that carries an underlying
// cause (most callers pass BackendError), matching
// the propagation policy in the error-handling design: storage failures
// surface to the caller wrapped, never swallowed.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
