package api

import (
	"errors"
	"fmt"
)

// Failure taxonomy, derived from HTTP status. Callers match with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation rejected")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("request conflicts with server state")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("request never reached the server")
)

// Error is a failed API call. Message carries the verbatim server-supplied
// message when one was present, for user-facing surfaces.
type Error struct {
	Status  int
	Message string
	kind    error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d): %s", e.kind, e.Status, e.Message)
	}
	if e.Status == 0 {
		return fmt.Sprintf("api: %s", e.kind)
	}
	return fmt.Sprintf("api: %s (status %d)", e.kind, e.Status)
}

func (e *Error) Unwrap() error { return e.kind }

// classify maps an HTTP status to its taxonomy sentinel.
func classify(status int) error {
	switch {
	case status == 401:
		return ErrUnauthorized
	case status == 400 || status == 422:
		return ErrValidation
	case status == 404:
		return ErrNotFound
	case status >= 400 && status < 500:
		return ErrConflict
	default:
		return ErrServer
	}
}

func newStatusError(status int, message string) *Error {
	return &Error{Status: status, Message: message, kind: classify(status)}
}

func newNetworkError(err error) *Error {
	return &Error{kind: ErrNetwork, Message: err.Error()}
}
