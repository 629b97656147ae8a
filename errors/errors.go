package errors

import (
	"errors"
	"fmt"
)

// Error is a structured error carrying a Code, a human-readable message,
// optional key/value context, and an optional cause.
type Error struct {
	code    Code
	message string
	context map[string]interface{}
	cause   error
}

// New creates a new Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap wraps an existing error with a code and message. Returns nil when
// err is nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{code: code, message: message, cause: err}
}

// WrapWithContext wraps an existing error with a code, message, and
// key/value context for diagnostics.
func WrapWithContext(err error, code Code, message string, context map[string]interface{}) *Error {
	e := Wrap(err, code, message)
	if e != nil {
		e.context = context
	}
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the error's code.
func (e *Error) Code() Code {
	return e.code
}

// Context returns the error's context map, which may be nil.
func (e *Error) Context() map[string]interface{} {
	return e.context
}

// GetCode returns the Code carried by err, walking the wrap chain.
// Errors without a structured Code report CodeUnknown.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeUnknown
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers need only one errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// Re-exported so callers need only one errors import.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
