package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeTransient           = "TRANSIENT_ERROR"
	ErrCodeAuth                = "AUTH_ERROR"
	ErrCodeFatal               = "FATAL_ERROR"
	ErrCodeAnalysisUnavailable = "ANALYSIS_UNAVAILABLE"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// CodeOf returns the code of err if it is (or wraps) a DomainError,
// otherwise ErrCodeInternal.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}

// Retryable reports whether the orchestrator may retry the operation
// that produced err. Only provider-side rate limiting and transient
// failures qualify.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case ErrCodeRateLimited, ErrCodeTransient:
		return true
	}
	return false
}

// Error constructors

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) error {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string) error {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

// NewInvalidStateError creates a new invalid state error
func NewInvalidStateError(msg string) error {
	return &DomainError{
		Code:    ErrCodeInvalidState,
		Message: msg,
	}
}

// NewRateLimitedError creates a provider rate-limit error
func NewRateLimitedError(provider string) error {
	return &DomainError{
		Code:    ErrCodeRateLimited,
		Message: fmt.Sprintf("%s rate limit exceeded", provider),
	}
}

// NewTransientError creates a retryable provider error
func NewTransientError(msg string, err error) error {
	return &DomainError{
		Code:    ErrCodeTransient,
		Message: msg,
		Err:     err,
	}
}

// NewAuthError creates a provider authentication error
func NewAuthError(provider string) error {
	return &DomainError{
		Code:    ErrCodeAuth,
		Message: fmt.Sprintf("%s authentication failed", provider),
	}
}

// NewFatalError creates a non-retryable provider error
func NewFatalError(msg string, err error) error {
	return &DomainError{
		Code:    ErrCodeFatal,
		Message: msg,
		Err:     err,
	}
}

// NewAnalysisUnavailableError marks an AI backend failure. Never surfaced
// to callers; the scoring engine falls back on it.
func NewAnalysisUnavailableError(err error) error {
	return &DomainError{
		Code:    ErrCodeAnalysisUnavailable,
		Message: "AI analysis unavailable",
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred",
		Err:     err,
	}
}
