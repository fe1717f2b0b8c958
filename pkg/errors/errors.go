package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the category of error for handling
type ErrorCategory string

const (
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryInvalidRequest ErrorCategory = "invalid_request"
	CategorySystemError    ErrorCategory = "system_error"
)

// ErrSigningFailed is returned when an HMAC signature could not be produced.
// It indicates a configuration or environment defect, not bad user input.
var ErrSigningFailed = errors.New("signing failed")

// ConfigurationError reports missing or unusable merchant credentials.
// Fatal at setup, never retried.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is required", e.Field)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field string) *ConfigurationError {
	return &ConfigurationError{Field: field}
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// RequestBuildError wraps an internal failure while building a payment request.
type RequestBuildError struct {
	Cause error
}

func (e *RequestBuildError) Error() string {
	return fmt.Sprintf("request build failed: %v", e.Cause)
}

func (e *RequestBuildError) Unwrap() error {
	return e.Cause
}

// Category classifies err for callers that map errors onto transport status codes.
func Category(err error) ErrorCategory {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return CategoryConfiguration
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return CategoryInvalidRequest
	}
	return CategorySystemError
}

// IsRetriable reports whether the same call may succeed after the caller corrects its input.
func IsRetriable(err error) bool {
	return Category(err) == CategoryInvalidRequest
}
