package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrExtract ErrorType = iota
	ErrCheckout
	ErrFileOp
	ErrInvalidConfig
	ErrLookup
	ErrVerify
	ErrFetch
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrExtract:
		return "Extract"
	case ErrCheckout:
		return "Checkout"
	case ErrFileOp:
		return "FileOp"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrLookup:
		return "Lookup"
	case ErrVerify:
		return "Verify"
	case ErrFetch:
		return "Fetch"
	default:
		return "Unknown"
	}
}

// BuildError represents an error raised while handling build metadata
type BuildError struct {
	Type      ErrorType
	Component string
	Err       error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Component, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *BuildError) Unwrap() error {
	return e.Err
}

// IsType reports whether err wraps a BuildError of the given type.
func IsType(err error, t ErrorType) bool {
	var be *BuildError
	return errors.As(err, &be) && be.Type == t
}
