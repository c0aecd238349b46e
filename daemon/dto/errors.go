package dto

import (
	"fmt"
	"net/http"
)

// ErrorCode represents standardized error codes for the query API. Only
// the general, validation, and not-found families survive from the
// teacher's taxonomy: the storage/array/docker/VM/UPS/operation codes were
// defined for its hardware-control surface, which this read-only stats
// export has no equivalent of.
type ErrorCode string

const (
	ErrCodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeInternalError      ErrorCode = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"

	ErrCodeContainerNotFound ErrorCode = "CONTAINER_NOT_FOUND"
)

// APIError represents a structured API error with code, message, and optional details.
type APIError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// WithDetails adds details to the error.
func (e *APIError) WithDetails(details map[string]interface{}) *APIError {
	e.Details = details
	return e
}

// WithCause adds a cause error.
func (e *APIError) WithCause(cause error) *APIError {
	e.Cause = cause
	return e
}

// NewAPIError creates a new API error.
func NewAPIError(code ErrorCode, message string, httpStatus int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// ValidationError represents a field-specific validation error.
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 1 {
		return fmt.Sprintf("validation failed for field '%s': %s", v.Errors[0].Field, v.Errors[0].Message)
	}
	return fmt.Sprintf("validation failed for %d fields", len(v.Errors))
}

// AddError adds a validation error.
func (v *ValidationErrors) AddError(field, message string) {
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: message})
}

// AddErrorWithValue adds a validation error that also records the offending value.
func (v *ValidationErrors) AddErrorWithValue(field, message string, value interface{}) {
	v.Errors = append(v.Errors, ValidationError{Field: field, Value: value, Message: message})
}

// HasErrors returns true if there are validation errors.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// ToAPIError converts validation errors to an API error.
func (v *ValidationErrors) ToAPIError() *APIError {
	return NewAPIError(ErrCodeValidationFailed, v.Error(), http.StatusBadRequest).
		WithDetails(map[string]interface{}{"validation_errors": v.Errors})
}

// NewValidationError creates a new, empty validation error collection.
func NewValidationError() *ValidationErrors {
	return &ValidationErrors{Errors: make([]ValidationError, 0)}
}

// NewContainerNotFoundError creates a container-not-found error carrying
// the requested container ID for detail.
func NewContainerNotFoundError(containerID string) *APIError {
	return NewAPIError(
		ErrCodeContainerNotFound,
		fmt.Sprintf("container '%s' not found", containerID),
		http.StatusNotFound,
	).WithDetails(map[string]interface{}{"container_id": containerID})
}

// NewParameterValidationError creates a parameter validation error.
func NewParameterValidationError(parameter string, value interface{}, reason string) *APIError {
	return NewAPIError(
		ErrCodeInvalidParameter,
		fmt.Sprintf("invalid parameter '%s': %s", parameter, reason),
		http.StatusBadRequest,
	).WithDetails(map[string]interface{}{
		"parameter": parameter,
		"value":     value,
		"reason":    reason,
	})
}

var (
	ErrUnauthorized = NewAPIError(ErrCodeUnauthorized, "authentication required", http.StatusUnauthorized)
	ErrForbidden    = NewAPIError(ErrCodeForbidden, "access denied", http.StatusForbidden)
	ErrInternal     = NewAPIError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError)
)
