package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError and decides the HTTP status it maps to.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the single structured error returned by account workflows.
// Message is safe to show to clients; Err keeps the internal cause for
// logging and errors.Is checks.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
	Fields  map[string]string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code of the error.
func (e *AppError) Status() int {
	return e.Kind.Status()
}

func newAppError(kind Kind, msg string, cause error) *AppError {
	return &AppError{Kind: kind, Message: msg, Err: cause}
}

func NewValidationError(msg string, cause error) *AppError {
	return newAppError(KindValidation, msg, cause)
}

func NewUnauthorizedError(msg string, cause error) *AppError {
	return newAppError(KindUnauthorized, msg, cause)
}

func NewNotFoundError(msg string, cause error) *AppError {
	return newAppError(KindNotFound, msg, cause)
}

func NewConflictError(msg string, cause error) *AppError {
	return newAppError(KindConflict, msg, cause)
}

func NewInternalError(msg string, cause error) *AppError {
	return newAppError(KindInternal, msg, cause)
}

// AsAppError extracts an *AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal when err carries no AppError.
func KindOf(err error) Kind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind
	}
	return KindInternal
}
