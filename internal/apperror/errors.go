package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common cases
var (
	ErrNotFound   = errors.New("resource not found")
	ErrBadRequest = errors.New("bad request")
	ErrValidation = errors.New("validation error")

	// ErrSchema marks a batch whose required fields (date, amount) could
	// not be inferred; the whole batch is rejected, never partially read.
	ErrSchema = errors.New("schema error")

	// ErrInsufficientData marks a statistic whose minimum sample size was
	// not met; the corresponding report section is omitted, not fabricated.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNoData marks an analysis request before any transactions were loaded.
	ErrNoData = errors.New("no transaction data loaded")
)

// AppError wraps errors with HTTP status and user-friendly message
type AppError struct {
	Err        error  // Original error (for logging)
	Message    string // User-friendly message
	StatusCode int    // HTTP status code
	Field      string // Optional field name for validation errors
}

func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for common errors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func ValidationError(field, message string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Field:      field,
	}
}

// SchemaError reports a batch whose date and amount columns could not be
// inferred from the header row.
func SchemaError(source, message string) *AppError {
	return &AppError{
		Err:        ErrSchema,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Field:      source,
	}
}

// InsufficientData reports a report section omitted because its minimum
// sample size was not met.
func InsufficientData(section string) *AppError {
	return &AppError{
		Err:        ErrInsufficientData,
		Message:    fmt.Sprintf("not enough data for %s", section),
		StatusCode: http.StatusNotFound,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "an internal error occurred",
		StatusCode: http.StatusInternalServerError,
	}
}

// GetStatusCode extracts HTTP status from error, defaults to 500
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	// Check sentinel errors
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoData), errors.Is(err, ErrInsufficientData):
		return http.StatusNotFound
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrSchema):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// GetMessage extracts user message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
