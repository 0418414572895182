package errors

import (
	"errors"
	"fmt"
)

// Error types for different failure classes
type ErrorType string

const (
	// ErrorTypeConfiguration covers unknown frameworks, embedding dimension
	// mismatches and malformed catalogs. Fatal to the triggering operation.
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeDataQuality covers recoverable input defects (missing
	// embedding, empty clause list). Handled locally, surfaced via warn logs.
	ErrorTypeDataQuality ErrorType = "data_quality"
	// ErrorTypeInvariant marks internal consistency defects. A report must
	// never be returned once one is detected.
	ErrorTypeInvariant    ErrorType = "invariant"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeInternal     ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
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

// Is lets sentinel AppErrors match wrapped copies carrying extra details
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if !errors.As(target, &appErr) {
		return false
	}
	return e.Type == appErr.Type && e.Code == appErr.Code
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// Error constructors
func NewConfigurationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConfiguration,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 422,
	}
}

func NewDataQualityError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeDataQuality,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 422,
	}
}

func NewInvariantViolation(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvariant,
		Code:       "INVARIANT_VIOLATION",
		Message:    message,
		Retryable:  false,
		StatusCode: 500,
	}
}

func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		Retryable:  false,
		StatusCode: 404,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
		Retryable:  false,
		StatusCode: 401,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

// Predefined common errors
var (
	ErrUnknownFramework  = NewConfigurationError("UNKNOWN_FRAMEWORK", "Framework is not in the loaded catalog set")
	ErrInvalidFramework  = NewConfigurationError("INVALID_FRAMEWORK", "Requested framework cannot be resolved")
	ErrNoFrameworks      = NewConfigurationError("NO_FRAMEWORKS", "At least one framework must be requested")
	ErrDimensionMismatch = NewConfigurationError("DIMENSION_MISMATCH", "Clause embedding dimension does not match the catalog")
	ErrEmptyCatalog      = NewConfigurationError("EMPTY_CATALOG", "Framework catalog contains no requirements")
	ErrMissingEmbedding  = NewDataQualityError("MISSING_EMBEDDING", "Clause has no embedding")
	ErrEmptyClauseList   = NewDataQualityError("EMPTY_CLAUSE_LIST", "Document has no extractable clauses")
	ErrMandatoryCoverage = NewInvariantViolation("mandatory requirement must appear in exactly one of results or missing")
)

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
