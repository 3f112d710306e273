// Package coldberr defines the error taxonomy shared by every engine
// package: a closed set of kinds plus a wrapping Error type, used instead of
// bare errors.New/panic at package boundaries.
package coldberr

import (
	"errors"
	"fmt"
)

// Kind is one of the seven error kinds the engine distinguishes. Callers
// switch on Kind, not on message text.
type Kind string

const (
	// ParseError is raised by the front-end for malformed SQL or plan input.
	ParseError Kind = "parse_error"
	// SchemaConflict is raised by Schema.TryAppend when a non-union column
	// would be widened; Schema.Append never returns it, it widens silently.
	SchemaConflict Kind = "schema_conflict"
	// TypeError covers GetUnionTag on an absent variant and values coerced
	// to a type that cannot hold them.
	TypeError Kind = "type_error"
	// BoundsError covers out-of-range column indices and chunk capacity
	// overflow.
	BoundsError Kind = "bounds_error"
	// NotFound covers a primary-key lookup for an absent document id.
	NotFound Kind = "not_found"
	// Unsupported covers operations the engine deliberately does not
	// implement (e.g. UPDATE ... JOIN against a non document-table).
	Unsupported Kind = "unsupported"
	// Internal covers invariant violations. Fatal to the statement that
	// triggered it, never to the process.
	Internal Kind = "internal"
)

// Error is the concrete error type returned across every package boundary in
// the engine.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds an *Error with a formatted message and no wrapped cause.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error around an existing error.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Wrapf builds an *Error around an existing error with a formatted message.
func Wrapf(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
