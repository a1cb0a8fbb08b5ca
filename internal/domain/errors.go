package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrEmptyText     = NewDomainError(ErrCodeValidation, "text must not be empty")
	ErrEmptyQuery    = NewDomainError(ErrCodeValidation, "query must not be empty")
	ErrInvalidTopic  = NewDomainError(ErrCodeValidation, "topic labels must not be blank")
	ErrInvalidID     = NewDomainError(ErrCodeValidation, "id must be a valid UUID")
	ErrInvalidCursor = NewDomainError(ErrCodeValidation, "invalid pagination cursor")
)

// Not found errors
var (
	ErrContentNotFound = NewDomainError(ErrCodeNotFound, "content item not found")
)

// Authorization errors
var (
	ErrInvalidToken = NewDomainError(ErrCodeUnauthorized, "invalid api token")
)

// Upstream errors
var (
	ErrEmbeddingUnavailable = NewDomainError(ErrCodeUpstream, "embedding provider unavailable")
)

// NewEmbeddingError wraps an embedding-provider failure so it surfaces as a
// bad-gateway rather than a generic internal error.
func NewEmbeddingError(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeUpstream, "embedding provider error", err)
}
