package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. The prefix of each code names its category and is
// what Category() keys off.
const (
	// Validation: the inbound or feedback event is structurally unusable.
	ErrCodeValidationMissingField    ErrorCode = "validation_missing_required_field"
	ErrCodeValidationInvalidEvent    ErrorCode = "validation_invalid_event"
	ErrCodeValidationInvalidLat      ErrorCode = "validation_invalid_latitude"
	ErrCodeValidationInvalidLon      ErrorCode = "validation_invalid_longitude"
	ErrCodeValidationInvalidTime     ErrorCode = "validation_invalid_timestamp"
	ErrCodeValidationInvalidEmail    ErrorCode = "validation_invalid_email"
	ErrCodeValidationUnknownFeedback ErrorCode = "validation_unknown_feedback_type"

	// Not found
	ErrCodeNotFoundMessage    ErrorCode = "not_found_message"
	ErrCodeNotFoundSuppressed ErrorCode = "not_found_suppression"

	// Parse
	ErrCodeParseMessage  ErrorCode = "parse_message_failed"
	ErrCodeParseFeedback ErrorCode = "parse_feedback_failed"
	ErrCodeParseForecast ErrorCode = "parse_forecast_failed"

	// Internal/Upstream
	ErrCodeInternalDB            ErrorCode = "internal_database_error"
	ErrCodeInternalUnexpected    ErrorCode = "internal_unexpected_error"
	ErrCodeUpstreamStorage       ErrorCode = "upstream_storage_unavailable"
	ErrCodeUpstreamEmailProvider ErrorCode = "upstream_email_provider_unavailable"
	ErrCodeUpstreamForecast      ErrorCode = "upstream_forecast_unavailable"
	ErrCodeUpstreamUnavailable   ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamRateLimited   ErrorCode = "upstream_rate_limited"

	ErrCodeEmailBlocked ErrorCode = "email_blocked"
)

// ErrorCategory groups error codes by how the pipeline reacts to them.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryParse      ErrorCategory = "parse"
	CategoryDependency ErrorCategory = "dependency"
)

// Category maps an ErrorCode to its category. Unrecognized codes are treated
// as dependency failures.
func (c ErrorCode) Category() ErrorCategory {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return CategoryValidation
	case strings.HasPrefix(s, "not_found_"):
		return CategoryNotFound
	case strings.HasPrefix(s, "parse_"):
		return CategoryParse
	default:
		return CategoryDependency
	}
}

// AppError is the standard application error type.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails returns a copy of the error with the provided details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CategoryOf returns the category of the first AppError in err's chain, or
// CategoryDependency when the chain carries none.
func CategoryOf(err error) ErrorCategory {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code.Category()
	}
	return CategoryDependency
}

// IsNotFound reports whether err carries a not_found_* AppError.
func IsNotFound(err error) bool {
	return err != nil && CategoryOf(err) == CategoryNotFound
}
