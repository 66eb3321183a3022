// Package apperr defines the error taxonomy shared by the store, session,
// AI and web layers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an error for callers and for HTTP mapping.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION"
	ErrorTypeNotFound    ErrorType = "NOT_FOUND"
	ErrorTypeConflict    ErrorType = "UNIQUE_CONSTRAINT_VIOLATION"
	ErrorTypeCorrupt     ErrorType = "CORRUPT"
	ErrorTypeUnavailable ErrorType = "RESOURCE_UNAVAILABLE"
	ErrorTypeExhausted   ErrorType = "RESOURCE_EXHAUSTED"
	ErrorTypeInternal    ErrorType = "INTERNAL"
)

// AppError is an application error carrying a type, a user-facing message
// and an optional cause.
type AppError struct {
	Type       ErrorType      `json:"type"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
	HTTPStatus int            `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause wraps an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// WithDetails attaches structured details.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// NewValidationError reports an empty or malformed required field.
func NewValidationError(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

// NewNotFoundError reports a missing snapshot, user or entity.
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflictError reports a duplicate registration identity.
func NewConflictError(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Message: message, HTTPStatus: http.StatusConflict}
}

// NewCorruptError reports unparsable persisted data.
func NewCorruptError(what string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeCorrupt,
		Message:    fmt.Sprintf("%s is corrupt", what),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewUnavailableError reports an unreachable AI backend or database.
func NewUnavailableError(service string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Message:    fmt.Sprintf("service '%s' is unavailable", service),
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewExhaustedError reports a bounded resource that could not be acquired in time.
func NewExhaustedError(resource string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeExhausted,
		Message:    fmt.Sprintf("%s exhausted", resource),
		Cause:      err,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks if an error is of a specific type.
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

func IsValidation(err error) bool  { return IsType(err, ErrorTypeValidation) }
func IsNotFound(err error) bool    { return IsType(err, ErrorTypeNotFound) }
func IsConflict(err error) bool    { return IsType(err, ErrorTypeConflict) }
func IsCorrupt(err error) bool     { return IsType(err, ErrorTypeCorrupt) }
func IsUnavailable(err error) bool { return IsType(err, ErrorTypeUnavailable) }
func IsExhausted(err error) bool   { return IsType(err, ErrorTypeExhausted) }

// HTTPStatus returns the status code for err, 500 for foreign errors.
func HTTPStatus(err error) int {
	if appErr := GetAppError(err); appErr != nil && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
