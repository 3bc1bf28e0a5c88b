package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal error")
	ErrValidation   = errors.New("validation failed")

	ErrExtraction   = errors.New("text extraction failed")
	ErrPrecondition = errors.New("precondition failed")
	ErrAIService    = errors.New("ai service failed")
	ErrPersistence  = errors.New("persistence failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NotFoundError reports an unknown resource.
func NotFoundError(message string) error {
	return NewAppError("NOT_FOUND", message, ErrNotFound)
}

// ForbiddenError reports a caller acting on a resource it does not own.
func ForbiddenError(message string) error {
	return NewAppError("FORBIDDEN", message, ErrForbidden)
}

func UnauthorizedError(message string) error {
	return NewAppError("UNAUTHORIZED", message, ErrUnauthorized)
}

func InvalidArgumentError(message string) error {
	return NewAppError("INVALID_ARGUMENT", message, ErrInvalidInput)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

// PreconditionError reports an operation attempted before its inputs exist.
func PreconditionError(message string) error {
	return NewAppError("PRECONDITION_FAILED", message, ErrPrecondition)
}

// ExtractionError wraps an OCR or PDF parse failure.
func ExtractionError(message string, cause error) error {
	return NewAppError("EXTRACTION_FAILED", message, errors.Join(ErrExtraction, cause))
}

// AIServiceError wraps a provider failure. It never leaves the AI checker.
func AIServiceError(message string, cause error) error {
	return NewAppError("AI_SERVICE_FAILED", message, errors.Join(ErrAIService, cause))
}

// PersistenceError wraps a failed write of a result.
func PersistenceError(message string, cause error) error {
	return NewAppError("PERSISTENCE_FAILED", message, errors.Join(ErrPersistence, cause))
}

func InternalError(message string) error {
	return NewAppError("INTERNAL", message, ErrInternal)
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// PublicMessage returns the AppError message when err carries one, else fallback.
func PublicMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
