package common

import (
	"errors"
	"net/http"
)

// ErrorType classifies application errors for HTTP mapping
type ErrorType string

const (
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeAuthorization  ErrorType = "authorization"
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeInternal       ErrorType = "internal"
)

// AppError is an application error carrying its HTTP classification.
// The wrapped cause is logged server-side only and never serialized.
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped cause
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error type to an HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeAuthorization:
		return http.StatusForbidden
	case ErrorTypeValidation, ErrorTypeConflict:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewAuthenticationError creates a 401 error
func NewAuthenticationError(message string) *AppError {
	return &AppError{Type: ErrorTypeAuthentication, Message: message}
}

// NewAuthorizationError creates a 403 error
func NewAuthorizationError(message string) *AppError {
	return &AppError{Type: ErrorTypeAuthorization, Message: message}
}

// NewBadRequestError creates a 400 error for malformed input
func NewBadRequestError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message, Err: err}
}

// NewConflictError creates a 400 error for a state that has already transitioned
func NewConflictError(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Message: message}
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewInternalError creates a 500 error; message is generic, cause stays internal
func NewInternalError(err error) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: "internal server error", Err: err}
}

// AsAppError extracts an *AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
