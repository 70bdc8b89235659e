package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors of the variant matcher and its storage.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidCancerType   = errors.New("invalid cancer type")
	ErrMissingVariantInput = errors.New("missing variant input")
	ErrInvalidGene         = errors.New("invalid gene symbol")
	ErrStorage             = errors.New("storage failure")
)

// APIError represents a standardized error response
type APIError struct {
	Success       bool      `json:"success"`
	Code          string    `json:"code"`
	Message       string    `json:"message"`
	Details       string    `json:"details,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeInvalidCancerType   = "INVALID_CANCER_TYPE"
	ErrCodeMissingVariantInput = "MISSING_VARIANT_INPUT"
	ErrCodeInvalidGene         = "INVALID_GENE"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeStorage             = "STORAGE_ERROR"
	ErrCodeRateLimit           = "RATE_LIMIT_EXCEEDED"
	ErrCodeTimeout             = "REQUEST_TIMEOUT"
	ErrCodeInternalServer      = "INTERNAL_SERVER_ERROR"
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewAPIError creates a new APIError with timestamp
func NewAPIError(code, message, details, correlationID string) *APIError {
	return &APIError{
		Success:       false,
		Code:          code,
		Message:       message,
		Details:       details,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
	}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
