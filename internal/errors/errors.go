// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. The session manager returns these values from its
// login and registration operations so callers can render an inline message and
// decide whether the session was affected.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// making it easier to handle different types of failures appropriately.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// Validation indicates the remote service rejected the input with a structured detail.
	Validation Kind = "validation"
	// AuthRejected indicates the remote service rejected the presented credential.
	AuthRejected Kind = "auth_rejected"
	// Transport indicates the service was unreachable or answered with something unusable.
	Transport Kind = "transport"
	// User indicates input rejected locally before any network call.
	User Kind = "user"
	// Superseded indicates a result arrived after the session was reset underneath it.
	Superseded Kind = "superseded"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// UserMessage returns the human-friendly message of err, or fallback when err
// carries none.
func UserMessage(err error, fallback string) string {
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
