// Package apperr defines the error kinds surfaced by the game core.
package apperr

import "errors"

// Kind is a machine-readable error category.
type Kind string

const (
	KindInternal     Kind = "INTERNAL"
	KindNotFound     Kind = "NOT_FOUND"
	KindInvalidState Kind = "INVALID_STATE"
	KindValidation   Kind = "VALIDATION"
	KindProvider     Kind = "PROVIDER"
	KindConflict     Kind = "CONFLICT"
)

// Error is the domain error type. Message is safe to show to a client.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// NotFound reports an unknown game or player.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// InvalidState reports an operation that is illegal for the current game status.
func InvalidState(msg string) *Error {
	return &Error{Kind: KindInvalidState, Message: msg}
}

// Validation reports bad card ids or a malformed submission.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Provider reports an unavailable oracle or an unusable verdict.
func Provider(msg string, cause error) *Error {
	return &Error{Kind: KindProvider, Message: msg, Cause: cause}
}

// Conflict reports a save that lost an optimistic version check. The caller may retry.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// KindOf extracts the kind from any error, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is checks whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
