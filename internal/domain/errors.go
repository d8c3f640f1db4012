// Package domain holds the types shared by the gateway adapters and the
// generation orchestrator, including the canonical error taxonomy.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category of an API error.
type ErrorType string

const (
	// ErrorTypeInvalidInput indicates a request rejected before any
	// network call: blank prompt, unsupported provider, malformed shape.
	ErrorTypeInvalidInput ErrorType = "invalid_input"

	// ErrorTypeUpstream indicates a provider call failed: network error,
	// non-2xx status, or a response missing the expected text path.
	ErrorTypeUpstream ErrorType = "upstream_failure"

	// ErrorTypeAuthentication indicates a rejected credential.
	ErrorTypeAuthentication ErrorType = "authentication"

	// ErrorTypeNotFound indicates a missing resource.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeServer indicates an internal failure.
	ErrorTypeServer ErrorType = "server"
)

// ErrorCode adds specificity beyond the type.
type ErrorCode string

const (
	ErrorCodeEmptyPrompt     ErrorCode = "empty_prompt"
	ErrorCodeInvalidProvider ErrorCode = "invalid_provider"
	ErrorCodeMissingContent  ErrorCode = "missing_content"
)

// APIError is the canonical error surfaced to callers. Upstream provider
// detail is reported verbatim in Message when available.
type APIError struct {
	Type     ErrorType `json:"type"`
	Code     ErrorCode `json:"code,omitempty"`
	Message  string    `json:"message"`
	Provider string    `json:"provider,omitempty"`

	// StatusCode is the suggested HTTP status. Zero means derive from Type.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// HTTPStatusCode returns the HTTP status to report this error with.
func (e *APIError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithCode sets the error code.
func (e *APIError) WithCode(code ErrorCode) *APIError {
	e.Code = code
	return e
}

// WithStatusCode sets a specific HTTP status code.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) *APIError {
	return &APIError{Type: ErrorTypeInvalidInput, Message: message}
}

// ErrUpstream creates an upstream failure attributed to a provider.
func ErrUpstream(provider, message string) *APIError {
	return &APIError{Type: ErrorTypeUpstream, Message: message, Provider: provider}
}

// ErrAuthentication creates an authentication error.
func ErrAuthentication(message string) *APIError {
	return &APIError{Type: ErrorTypeAuthentication, Message: message}
}

// ErrNotFound creates a not found error.
func ErrNotFound(message string) *APIError {
	return &APIError{Type: ErrorTypeNotFound, Message: message}
}

// ErrServer creates an internal server error.
func ErrServer(message string) *APIError {
	return &APIError{Type: ErrorTypeServer, Message: message}
}

// AsAPIError unwraps err to an *APIError if possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
