// File: api/errors.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error types and error handling utilities for the smallbox library.

package api

import "fmt"

// Common errors used across the library.
var (
	// ErrDoesNotFit reports that a value's size or alignment exceeds the
	// capacity of the target inline space. Returned only by the strict
	// inline placement path; the caller's value is left untouched and
	// fully usable.
	ErrDoesNotFit = fmt.Errorf("value does not fit inline space")

	// ErrAllocFailure reports that the allocator capability could not
	// satisfy a heap request. There is no smaller fallback once the heap
	// path is chosen, so this error propagates to the caller unchanged.
	ErrAllocFailure = fmt.Errorf("heap allocation failed")

	// ErrBoxReleased reports use of a box whose destructor obligation has
	// already been discharged (released, moved-from, or taken).
	ErrBoxReleased = fmt.Errorf("box already released")

	// ErrTypeMismatch reports a typed extraction whose requested type does
	// not match the stored value's identity token.
	ErrTypeMismatch = fmt.Errorf("stored type does not match requested type")

	// ErrInvalidArgument reports a nil or otherwise unusable input value.
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeDoesNotFit
	ErrCodeAllocFailure
	ErrCodeReleased
	ErrCodeTypeMismatch
	ErrCodeInvalidArgument
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// Unwrap maps structured errors back onto the package sentinels so that
// errors.Is works across layers.
func (e *Error) Unwrap() error {
	switch e.Code {
	case ErrCodeDoesNotFit:
		return ErrDoesNotFit
	case ErrCodeAllocFailure:
		return ErrAllocFailure
	case ErrCodeReleased:
		return ErrBoxReleased
	case ErrCodeTypeMismatch:
		return ErrTypeMismatch
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	default:
		return nil
	}
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
