// ABOUTME: Application error taxonomy shared by services and the HTTP layer
// ABOUTME: Each Kind maps to one stable HTTP status; internal causes are never shown to clients

package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindValidation
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// InternalMessage is the only text clients see for internal failures.
const InternalMessage = "internal server error"

// Error is a classified error with a client-safe message.
type Error struct {
	Kind    Kind
	Message string // safe to show to the client
	Cause   error  // wrapped underlying error, logged only
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

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind && (t.Message == "" || t.Message == e.Message)
	}
	return false
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Validation is shorthand for New(KindValidation, message).
func Validation(message string) *Error { return New(KindValidation, message) }

// NotFound is shorthand for New(KindNotFound, message).
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Conflict is shorthand for New(KindConflict, message).
func Conflict(message string) *Error { return New(KindConflict, message) }

// Forbidden is shorthand for New(KindForbidden, message).
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// Unauthenticated is shorthand for New(KindUnauthenticated, message).
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

// Internal wraps an unexpected failure. The message is replaced with
// InternalMessage when shown to clients.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: InternalMessage, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus returns the status code for err.
func HTTPStatus(err error) int {
	return KindOf(err).HTTPStatus()
}

// PublicMessage returns the message safe to send to a client.
// Unclassified and internal errors collapse to InternalMessage.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return InternalMessage
}
