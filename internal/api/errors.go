package api

import "net/http"

// Error represents an API error response.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeNotReady         = "NOT_READY"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

// Standard errors
var (
	ErrNotFound = &Error{
		Code:    ErrCodeNotFound,
		Message: "Resource not found",
		Status:  http.StatusNotFound,
	}

	ErrMethodNotAllowed = &Error{
		Code:    ErrCodeMethodNotAllowed,
		Message: "Method not allowed",
		Status:  http.StatusMethodNotAllowed,
	}

	ErrInternalServer = &Error{
		Code:    ErrCodeInternalError,
		Message: "Internal server error",
		Status:  http.StatusInternalServerError,
	}

	ErrNotReady = &Error{
		Code:    ErrCodeNotReady,
		Message: "Dataset is not loaded yet",
		Status:  http.StatusServiceUnavailable,
	}
)

// NewBadRequest creates a bad request error with custom message.
func NewBadRequest(message string) *Error {
	return &Error{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewValidationError creates a validation error with custom message.
func NewValidationError(message string) *Error {
	return &Error{
		Code:    ErrCodeValidationFailed,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error with custom message.
func NewNotFound(message string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
	}
}
