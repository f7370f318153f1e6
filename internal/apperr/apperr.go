// Package apperr is the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuthz
	KindInvalidState
	KindRateLimited
	KindUnavailable
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthz:
		return "forbidden"
	case KindInvalidState:
		return "invalid_state"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error is a classified, user-presentable failure
type Error struct {
	Kind     Kind
	Messages []string
	// Input echoes submitted form values back on validation failures
	Input map[string]interface{}
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Message returns the first message
func (e *Error) Message() string {
	if len(e.Messages) == 0 {
		return ""
	}
	return e.Messages[0]
}

// WithInput attaches the submitted values to a validation error
func (e *Error) WithInput(input map[string]interface{}) *Error {
	e.Input = input
	return e
}

func Validation(messages ...string) *Error {
	return &Error{Kind: KindValidation, Messages: messages}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Messages: []string{message}}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Messages: []string{message}}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthz, Messages: []string{message}}
}

func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Messages: []string{message}}
}

func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Messages: []string{message}}
}

// Unavailable reports a failing downstream dependency with a safe message
func Unavailable(message string) *Error {
	return &Error{Kind: KindUnavailable, Messages: []string{message}}
}

// Unauthenticated refuses a sign-in or session with a message safe to show
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Messages: []string{message}}
}

// KindOf classifies err; unclassified errors are KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to its response status
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	case KindAuthz:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
