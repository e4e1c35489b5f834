package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a categorized error code
type ErrorCode string

const (
	// Validation errors
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// Lookup errors
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Auth errors
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Parse errors
	CodeParse         ErrorCode = "PARSE_ERROR"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Store errors
	CodeStore ErrorCode = "STORE_ERROR"

	// Resolver errors
	CodeResolver        ErrorCode = "RESOLVER_ERROR"
	CodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Config errors
	CodeConfig ErrorCode = "CONFIG_ERROR"

	// Internal errors
	CodeInternal ErrorCode = "INTERNAL_ERROR"
	CodeUnknown  ErrorCode = "UNKNOWN_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError creates a validation error
func ValidationError(message string) *AppError {
	return New(CodeValidation, message)
}

// NotFoundError creates a not found error
func NotFoundError(resource, identifier string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found: %s", resource, identifier))
}

// UnauthorizedError creates an unauthorized error
func UnauthorizedError(message string) *AppError {
	return New(CodeUnauthorized, message)
}

// ParseError creates a parse error
func ParseError(message string, err error) *AppError {
	return Wrap(err, CodeParse, message)
}

// StoreError creates a persistence error
func StoreError(message string, err error) *AppError {
	return Wrap(err, CodeStore, message)
}

// ResolverError creates a resolver error
func ResolverError(message string, err error) *AppError {
	return Wrap(err, CodeResolver, message)
}

// ConfigError creates a configuration error
func ConfigError(message string, err error) *AppError {
	if err != nil {
		return Wrap(err, CodeConfig, message)
	}
	return New(CodeConfig, message)
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeValidation || appErr.Code == CodeInvalidInput
	}
	return false
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return GetErrorCode(err) == CodeNotFound
}

// IsUnauthorized checks if an error is an authorization error
func IsUnauthorized(err error) bool {
	return GetErrorCode(err) == CodeUnauthorized
}

// HTTPStatus maps an error to the HTTP status code it should surface as
func HTTPStatus(err error) int {
	switch GetErrorCode(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeInvalidInput, CodeInvalidFormat:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeResolver, CodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
