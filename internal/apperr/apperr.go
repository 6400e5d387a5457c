// Package apperr defines the error kinds surfaced by the journal service and
// how they map onto HTTP responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by how the caller is expected to react to it.
type Kind int

const (
	// KindStoreFailure is any I/O failure against the document store, blob store or network.
	KindStoreFailure Kind = iota
	// KindAuthRequired means the action needs a signed-in viewer.
	KindAuthRequired
	// KindPermissionDenied means the viewer may not perform the write.
	KindPermissionDenied
	// KindValidation means the input was rejected before any I/O.
	KindValidation
	// KindNotFound means the addressed document does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuthRequired:
		return "AUTH_REQUIRED"
	case KindPermissionDenied:
		return "PERMISSION_DENIED"
	case KindValidation:
		return "VALIDATION_FAILED"
	case KindNotFound:
		return "NOT_FOUND"
	default:
		return "STORE_FAILURE"
	}
}

// Error is the typed error carried through services to the handlers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrAuthRequired) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for errors.Is comparisons.
var (
	ErrAuthRequired     = &Error{Kind: KindAuthRequired}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrStoreFailure     = &Error{Kind: KindStoreFailure}
)

func AuthRequired(msg string) *Error {
	return &Error{Kind: KindAuthRequired, Message: msg}
}

func PermissionDenied(msg string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Wrap attaches a kind and message to a lower level error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf reports the kind of err. Errors that are not *Error count as store failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreFailure
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "Internal server error"
}

// HTTPStatus maps an error onto the response status the handlers send.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuthRequired:
		return http.StatusUnauthorized
	case KindPermissionDenied:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
