package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	ErrorTypeConfiguration     ErrorType = "CONFIGURATION_ERROR"
	ErrorTypeEmptyResponse     ErrorType = "EMPTY_RESPONSE_ERROR"
	ErrorTypeMalformedResponse ErrorType = "MALFORMED_RESPONSE_ERROR"
	ErrorTypeTransport         ErrorType = "TRANSPORT_ERROR"
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeConflict          ErrorType = "CONFLICT_ERROR"
)

// AppError represents a structured error for the application
type AppError struct {
	Type          ErrorType `json:"type"`
	Message       string    `json:"message"`
	StatusCode    int       `json:"statusCode"`
	ErrorCode     string    `json:"errorCode"`
	IsOperational bool      `json:"isOperational"`
	Recovery      string    `json:"recoverySuggestion,omitempty"`
	Err           error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Code returns the application-specific error code
func (e *AppError) Code() string {
	return e.ErrorCode
}

// RecoverySuggestion returns the suggestion on how to recover from the error
func (e *AppError) RecoverySuggestion() string {
	return e.Recovery
}

// IsRetryable reports whether resubmitting the same request may succeed.
func (e *AppError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeEmptyResponse, ErrorTypeMalformedResponse, ErrorTypeConflict:
		return true
	case ErrorTypeTransport:
		// status 0 means the request never got an HTTP answer (dial, timeout, ...)
		return e.StatusCode == 0 ||
			e.StatusCode == http.StatusRequestTimeout ||
			e.StatusCode == http.StatusTooManyRequests ||
			e.StatusCode >= 500
	default:
		return false
	}
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

// NewConfigurationError creates an error for a missing or invalid setting (500)
func NewConfigurationError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeConfiguration,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewEmptyResponseError creates an error for an upstream answer without payload (502)
func NewEmptyResponseError(message string, errorCode string) *AppError {
	return &AppError{
		Type:          ErrorTypeEmptyResponse,
		Message:       message,
		StatusCode:    http.StatusBadGateway,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Submit the search again.",
	}
}

// NewMalformedResponseError creates an error for an upstream payload that could not be decoded (502)
func NewMalformedResponseError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeMalformedResponse,
		Message:       message,
		StatusCode:    http.StatusBadGateway,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Submit the search again.",
		Err:           err,
	}
}

// NewTransportError creates an error for a failed call to an external service.
// upstreamStatus is the HTTP status returned by the service, or 0 when there was none.
func NewTransportError(message string, errorCode string, upstreamStatus int, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeTransport,
		Message:       message,
		StatusCode:    upstreamStatus,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Check your connection and wait for the service to be available.",
		Err:           err,
	}
}

// NewValidationError creates a new validation error (400)
func NewValidationError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeValidation,
		Message:       message,
		StatusCode:    http.StatusBadRequest,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewConflictError creates an error for a request that clashes with work in progress (409)
func NewConflictError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeConflict,
		Message:       message,
		StatusCode:    http.StatusConflict,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}
