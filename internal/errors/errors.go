package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeInvalidInput ErrorType = "INVALID_INPUT"
	ErrTypeValidation   ErrorType = "VALIDATION"
	ErrTypeParsing      ErrorType = "PARSING"
	ErrTypeConfig       ErrorType = "CONFIG"
	ErrTypeReference    ErrorType = "REFERENCE"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewInvalidInputError creates an invalid-input error. This is the only error
// class an analysis caller is expected to branch on: missing required fields,
// mismatched series lengths, non-positive share counts, and discount rates at
// or below the terminal growth rate all land here.
func NewInvalidInputError(message string, cause error) *AppError {
	return NewAppError(ErrTypeInvalidInput, message, cause)
}

// NewValidationError creates a validation-related error
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewConfigError creates a configuration-related error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewReferenceError creates a reference-data error
func NewReferenceError(message string, cause error) *AppError {
	return NewAppError(ErrTypeReference, message, cause)
}

// IsType checks if an error is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsInvalidInput reports whether err belongs to the invalid-input class.
// Validation failures from struct validation are treated as invalid input too,
// since they describe the same caller mistake.
func IsInvalidInput(err error) bool {
	return IsType(err, ErrTypeInvalidInput) || IsType(err, ErrTypeValidation)
}
