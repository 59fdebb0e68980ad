// Package apperr defines the error taxonomy the API surfaces to clients.
// Every core operation returns one of these kinds; the HTTP layer maps the
// kind to a status code and renders a plain {status, message} envelope
// without internal detail.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping.
type Kind int

const (
	// KindInternal is an unexpected failure (persistence error, bug).
	KindInternal Kind = iota
	// KindValidation is malformed or missing input.
	KindValidation
	// KindAuth is a missing, invalid, or expired credential.
	KindAuth
	// KindForbidden is an authenticated caller without entitlement.
	KindForbidden
	// KindNotFound is a resource that is absent or not owned by the caller.
	KindNotFound
	// KindInvalidState is an operation not valid for the entity's current
	// state, e.g. transferring a unit that is not available.
	KindInvalidState
	// KindConflict is a lost optimistic-concurrency race.
	KindConflict
)

// Error is a classified error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

func Auth(format string, args ...interface{}) *Error {
	return newf(KindAuth, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newf(KindForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

func InvalidState(format string, args ...interface{}) *Error {
	return newf(KindInvalidState, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// Internal wraps an unexpected error behind a generic client message. The
// wrapped error stays available for logging but never reaches the payload.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf extracts the kind from err, defaulting to KindInternal for
// unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message for err. Unclassified errors
// render as a generic internal message.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
