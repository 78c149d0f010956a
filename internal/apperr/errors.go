// Package apperr defines the error taxonomy shared by the data layer, the
// auth middleware and the handlers. Every failure that reaches the request
// boundary is an *Error (or wraps one) so the HTTP layer can pick the status
// code from its Kind instead of matching on message text.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the request boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindStore
	KindMethodNotAllowed
	KindStatement
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindStatement:
		return "statement"
	}
	return "internal"
}

// Error is a classified failure. Message is safe to show to clients; Err
// carries the underlying detail which is only exposed in development mode.
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

// New builds an *Error of the given kind.
func New(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error { return New(KindValidation, msg, nil) }

func Authentication(msg string) *Error { return New(KindAuthentication, msg, nil) }

func Authorization(msg string) *Error { return New(KindAuthorization, msg, nil) }

func NotFound(msg string) *Error { return New(KindNotFound, msg, nil) }

func MethodNotAllowed() *Error { return New(KindMethodNotAllowed, "Method not allowed", nil) }

func Statement(msg string) *Error { return New(KindStatement, msg, nil) }

// Store wraps an engine failure, passing the engine message through.
func Store(err error) *Error { return New(KindStore, "store error", err) }

// KindOf reports the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Status maps a Kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}
