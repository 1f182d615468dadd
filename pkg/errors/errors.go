// Package errors provides structured error types for the sceneplan engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI, and API
//   - Machine-readable error codes for programmatic handling
//   - Per-object failure reasons in layout plans
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - CONFLICT / OUT_OF_BOUNDS / PLACEMENT_EXHAUSTED: placement outcomes
//   - NOT_FOUND: Resource not found
//   - INTERNAL_ERROR: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidGeometry, "degenerate box: x_min=%v x_max=%v", xMin, xMax)
//	if errors.Is(err, errors.ErrCodeInvalidGeometry) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInternal, origErr, "register %s after search", id)
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidGeometry   Code = "INVALID_GEOMETRY"
	ErrCodeInvalidTimeWindow Code = "INVALID_TIME_WINDOW"
	ErrCodeInvalidStrategy   Code = "INVALID_STRATEGY"
	ErrCodeInvalidKind       Code = "INVALID_KIND"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidRequest    Code = "INVALID_REQUEST"

	// Placement outcomes
	ErrCodeDuplicateID        Code = "DUPLICATE_ID"
	ErrCodeConflict           Code = "CONFLICT"
	ErrCodeOutOfBounds        Code = "OUT_OF_BOUNDS"
	ErrCodePlacementExhausted Code = "PLACEMENT_EXHAUSTED"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c *ConflictError
	if errors.As(err, &c) {
		return ErrCodeConflict
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ConflictError reports a placement rejected because of spatio-temporal
// overlap with already-tracked objects. IDs names every colliding object.
type ConflictError struct {
	IDs []string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: overlaps tracked objects [%s]", ErrCodeConflict, strings.Join(e.IDs, ", "))
}

// Conflict creates a ConflictError for the given object ids.
func Conflict(ids []string) *ConflictError {
	return &ConflictError{IDs: ids}
}

// ConflictIDs extracts the colliding object ids from an error chain.
// Returns nil if the error is not a ConflictError.
func ConflictIDs(err error) []string {
	var c *ConflictError
	if errors.As(err, &c) {
		return c.IDs
	}
	return nil
}
