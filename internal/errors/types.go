package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure class.
type ErrorCode string

const (
	// Pipeline errors
	ErrCodeDocumentNotFound ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrCodeParseFailure     ErrorCode = "PARSE_FAILURE"
	ErrCodeEmbeddingFailure ErrorCode = "EMBEDDING_FAILURE"
	ErrCodeIndexUnavailable ErrorCode = "INDEX_UNAVAILABLE"
	ErrCodeEmployeeNotFound ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeInvalidQuery     ErrorCode = "INVALID_QUERY"

	// Generic errors
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// ErrorType classifies who owns the failure.
type ErrorType int

const (
	ErrorTypeSystem ErrorType = iota
	ErrorTypeBusiness
	ErrorTypeValidation
	ErrorTypeExternal
)

// AppError is the application error carrier.
type AppError struct {
	Code    ErrorCode
	Message string
	Type    ErrorType
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewSystemError creates an internal failure.
func NewSystemError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Type: ErrorTypeSystem}
}

// NewBusinessError creates a domain-level failure.
func NewBusinessError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Type: ErrorTypeBusiness}
}

// NewValidationError creates an input-validation failure.
func NewValidationError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Type: ErrorTypeValidation}
}

// NewExternalError creates a collaborator failure.
func NewExternalError(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Type: ErrorTypeExternal}
}

// NewNotFoundError creates a missing-resource failure.
func NewNotFoundError(code ErrorCode, resource string) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf("%s not found", resource),
		Type:    ErrorTypeBusiness,
	}
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	for errors.As(err, &appErr) {
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
		appErr = nil
	}
	return false
}

// GetAppError unwraps to an AppError, wrapping foreign errors as system errors.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewSystemError(ErrCodeInternal, "internal error").WithCause(err)
}
