package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getevo/evo/v2/lib/outcome"
	"github.com/getevo/evo/v2/lib/text"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Authentication & Authorization errors
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeForbidden    ErrorCode = "forbidden"

	// Input validation errors
	ErrorCodeInvalidInput   ErrorCode = "invalid_input"
	ErrorCodeInvalidFieldID ErrorCode = "invalid_field_id"

	// Resource errors
	ErrorCodeNotFound ErrorCode = "not_found"

	// Schema errors
	ErrorCodeUnknownFieldType ErrorCode = "unknown_field_type"
	ErrorCodeDuplicateField   ErrorCode = "duplicate_field_name"
	ErrorCodeReorderConflict  ErrorCode = "group_reorder_conflict"

	// Internal errors
	ErrorCodeInternalError      ErrorCode = "internal_error"
	ErrorCodeDatabaseError      ErrorCode = "database_error"
	ErrorCodeConflict           ErrorCode = "conflict"
	ErrorCodeServiceUnavailable ErrorCode = "service_unavailable"
)

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode `json:"error"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Details    string    `json:"details,omitempty"`
}

// Error implements the error interface
func (e AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Response returns an outcome.Response for the error
func (e AppError) Response() outcome.Response {
	return outcome.Response{
		StatusCode: e.StatusCode,
		Data: text.ToJSON(map[string]interface{}{
			"error":   string(e.Code),
			"message": e.Message,
		}),
	}
}

// NewError creates a new AppError
func NewError(code ErrorCode, message string, statusCode int) AppError {
	return AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewErrorWithDetails creates a new AppError with additional details
func NewErrorWithDetails(code ErrorCode, message string, statusCode int, details string) AppError {
	return AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Predefined common errors
var (
	ErrForbidden = AppError{
		Code:       ErrorCodeForbidden,
		Message:    "Only administrators can access this endpoint",
		StatusCode: http.StatusForbidden,
	}

	ErrInvalidFieldID = AppError{
		Code:       ErrorCodeInvalidFieldID,
		Message:    "Invalid field definition ID",
		StatusCode: http.StatusBadRequest,
	}

	// Schema errors
	ErrUnknownFieldType = AppError{
		Code:       ErrorCodeUnknownFieldType,
		Message:    "Unknown field type key",
		StatusCode: http.StatusBadRequest,
	}

	ErrReorderConflict = AppError{
		Code:       ErrorCodeReorderConflict,
		Message:    "Reorder references a group belonging to another owner type",
		StatusCode: http.StatusConflict,
	}

	// Internal errors
	ErrInternalError = AppError{
		Code:       ErrorCodeInternalError,
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrDatabaseError = AppError{
		Code:       ErrorCodeDatabaseError,
		Message:    "Database operation failed",
		StatusCode: http.StatusInternalServerError,
	}
)

// Specific error constructors for common scenarios
func ErrFetchDefinitions() AppError {
	return NewError(ErrorCodeInternalError, "Failed to fetch field definitions", http.StatusInternalServerError)
}

func ErrFetchGroups() AppError {
	return NewError(ErrorCodeInternalError, "Failed to fetch field groups", http.StatusInternalServerError)
}

func ErrPersistValues() AppError {
	return NewError(ErrorCodeInternalError, "Failed to persist field values", http.StatusInternalServerError)
}

func ErrDuplicateFieldWithName(fieldName string) AppError {
	return NewErrorWithDetails(
		ErrorCodeDuplicateField,
		"A field with this name already exists for the owner type",
		http.StatusConflict,
		fmt.Sprintf("Field name: %s", fieldName),
	)
}

// Helper function to create outcome.Response from AppError
func Error(err AppError) outcome.Response {
	return err.Response()
}

// =====================================================
// STANDARDIZED SUCCESS RESPONSE SYSTEM
// =====================================================

// APIResponse represents a standardized API response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (r APIResponse) ToJSON() []byte {
	b, _ := json.Marshal(r)
	return b
}

// Meta contains metadata for API responses
type Meta struct {
	// Pagination
	Page       int   `json:"page,omitempty"`
	Limit      int   `json:"limit,omitempty"`
	Total      int64 `json:"total,omitempty"`
	TotalPages int   `json:"total_pages,omitempty"`

	// List/Collection metadata
	Count int `json:"count,omitempty"`
}

// OK creates a standardized success response
func OK(data interface{}) outcome.Response {
	return outcome.Response{
		ContentType: "application/json",
		StatusCode:  http.StatusOK,
		Data: APIResponse{
			Success: true,
			Data:    data,
		}.ToJSON(),
	}
}

// OKWithMeta creates a success response with metadata
func OKWithMeta(data interface{}, meta *Meta) outcome.Response {
	return outcome.Response{
		StatusCode: http.StatusOK,
		Data: APIResponse{
			Success: true,
			Data:    data,
			Meta:    meta,
		}.ToJSON(),
	}
}

// Created creates a 201 Created response
func Created(data interface{}) outcome.Response {
	return outcome.Response{
		StatusCode: http.StatusCreated,
		Data: APIResponse{
			Success: true,
			Data:    data,
		}.ToJSON(),
	}
}

// ValidationFailed creates a 422 response carrying per-field commit
// validation failures. The caller decides whether the failures block
// persistence; this response surfaces them next to the matching inputs.
func ValidationFailed(failures interface{}) outcome.Response {
	return outcome.Response{
		StatusCode: http.StatusUnprocessableEntity,
		Data: APIResponse{
			Success: false,
			Data:    failures,
			Message: "One or more field values failed validation",
		}.ToJSON(),
	}
}

// List creates a response for lists/collections with count
func List(data interface{}, count int) outcome.Response {
	meta := &Meta{
		Count: count,
	}

	return OKWithMeta(data, meta)
}

// Message creates a response with only a success message
func Message(message string) outcome.Response {
	return outcome.Response{
		StatusCode: http.StatusOK,
		Data: APIResponse{
			Success: true,
			Message: message,
		},
	}
}

// Unauthorized creates a 401 Unauthorized response
func Unauthorized(c interface{}, message string) outcome.Response {
	return Error(NewError(ErrorCodeUnauthorized, message, http.StatusUnauthorized))
}

// BadRequest creates a 400 Bad Request response
func BadRequest(c interface{}, message string) outcome.Response {
	return Error(NewError(ErrorCodeInvalidInput, message, http.StatusBadRequest))
}

// NotFound creates a 404 Not Found response
func NotFound(c interface{}, message string) outcome.Response {
	return Error(NewError(ErrorCodeNotFound, message, http.StatusNotFound))
}

// Conflict creates a 409 Conflict response
func Conflict(c interface{}, message string) outcome.Response {
	return Error(NewError(ErrorCodeConflict, message, http.StatusConflict))
}

// InternalError creates a 500 Internal Server Error response
func InternalError(c interface{}, message string) outcome.Response {
	return Error(NewError(ErrorCodeInternalError, message, http.StatusInternalServerError))
}

// ServiceUnavailable creates a 503 Service Unavailable response
func ServiceUnavailable(c interface{}, message string) outcome.Response {
	return Error(NewError(ErrorCodeServiceUnavailable, message, http.StatusServiceUnavailable))
}
