package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error. The set is closed: every error
// crossing a service boundary carries exactly one of these kinds.
type Kind int

const (
	Unauthenticated Kind = iota + 1
	Unauthorized
	NotFound
	ValidationFailed
	BackendUnavailable
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case ValidationFailed:
		return "validation_failed"
	case BackendUnavailable:
		return "backend_unavailable"
	default:
		return "unknown"
	}
}

// AppError represents an application error
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind to the response status code
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Unauthorized:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case ValidationFailed:
		return http.StatusUnprocessableEntity
	case BackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Kind:    NotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewValidation(message string) *AppError {
	return &AppError{
		Kind:    ValidationFailed,
		Message: message,
	}
}

func NewUnauthenticated(message string, err error) *AppError {
	return &AppError{
		Kind:    Unauthenticated,
		Message: message,
		Err:     err,
	}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{
		Kind:    Unauthorized,
		Message: message,
	}
}

func NewBackendUnavailable(err error) *AppError {
	return &AppError{
		Kind:    BackendUnavailable,
		Message: "backend unavailable",
		Err:     err,
	}
}

// KindOf extracts the kind from an error chain. Errors that never got
// classified report as BackendUnavailable so callers cannot mistake an
// infrastructure failure for a domain outcome.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return BackendUnavailable
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
