// Package vortexerrors provides structured error handling for Vortex with
// rich context, stack traces, and error categorization.
//
// Errors carry a type, a message, optional key-value details and the call
// stack captured at creation. In the columnar buffer layer every failure is
// an internal-invariant violation: the calling engine is expected to have
// validated inputs upstream, so errors indicate a bug in the caller, not bad
// user input, and are never retried.
//
//	if !types.Equals(c.types, input.Types()) {
//	    return vortexerrors.New(vortexerrors.ErrorTypeInternal, "batch types do not match collection types").
//	        WithDetail("expected", c.types).
//	        WithDetail("got", input.Types())
//	}
package vortexerrors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error, used for error handling
// strategies, monitoring and debugging.
type ErrorType string

const (
	// ErrorTypeInternal represents internal-invariant violations.
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents validation errors.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeData represents data processing errors.
	ErrorTypeData ErrorType = "data"
	// ErrorTypeCapability represents capability/feature not supported errors.
	ErrorTypeCapability ErrorType = "capability"
)

// Error is a structured error with context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame is a single frame of the call stack captured at error
// creation.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface, including the type, message and
// cause (if present).
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error. Chainable.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message, capturing the
// call stack at the point of creation.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context, preserving the
// original error as the cause. Returns nil if err is nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existing.Stack,
		}
	}
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsType checks if the error is of the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// captureStack captures the current call stack, skipping the given number
// of frames from the top.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}
	return frames
}
