package domain

import (
	"errors"
	"fmt"
)

// Error types for domain-specific errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConversion ErrorType = "conversion"
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeDegraded   ErrorType = "degraded"
	ErrorTypeCleanup    ErrorType = "cleanup"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeIO         ErrorType = "io"
)

// Sentinel errors for errors.Is checks at the front ends.
var (
	ErrInputNotFound = errors.New("input file not found")
	ErrNoTables      = errors.New("no tables detected")
)

// DomainError represents a domain-specific error with context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrInputNotFound) match any not_found error.
func (e *DomainError) Is(target error) bool {
	return target == ErrInputNotFound && e.Type == ErrorTypeNotFound
}

// NewError creates a new domain error
func NewError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func ValidationError(message string, err error) *DomainError {
	return NewError(ErrorTypeValidation, message, err)
}

func NotFoundError(message string, err error) *DomainError {
	return NewError(ErrorTypeNotFound, message, err)
}

func ConversionError(message string, err error) *DomainError {
	return NewError(ErrorTypeConversion, message, err)
}

func ExtractionError(message string, err error) *DomainError {
	return NewError(ErrorTypeExtraction, message, err)
}

func DegradedError(message string, err error) *DomainError {
	return NewError(ErrorTypeDegraded, message, err)
}

func CleanupError(message string, err error) *DomainError {
	return NewError(ErrorTypeCleanup, message, err)
}

func ConfigError(message string, err error) *DomainError {
	return NewError(ErrorTypeConfig, message, err)
}

func IOError(message string, err error) *DomainError {
	return NewError(ErrorTypeIO, message, err)
}

// TypeOf returns the ErrorType of the first DomainError in err's chain.
func TypeOf(err error) (ErrorType, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type, true
	}
	return "", false
}
