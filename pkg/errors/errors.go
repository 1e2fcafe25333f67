// Package errors provides the coded errors returned by every gridboard
// operation.
//
// A failed operation never mutates the layout; the returned [*Error] carries
// a [Code] that callers branch on (the HTTP API maps it to a status, the CLI
// prints [UserMessage]). Codes group as:
//
//   - INVALID_*: the caller passed a bad id, size, position, key or config
//   - *_NOT_FOUND: unknown widget, widget type or key
//   - UNSUPPORTED_SIZE, HISTORY_EMPTY, PLACEMENT_FAILED: well-formed requests
//     the current layout cannot accept
//   - STORAGE, MIGRATION: persistence failures; the in-memory layout survives
//
// Usage:
//
//	if err := mgr.MoveWidget(id, pos); errors.Is(err, errors.ErrCodeWidgetNotFound) {
//	    ...
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPosition Code = "INVALID_POSITION"
	ErrCodeInvalidSize     Code = "INVALID_SIZE"
	ErrCodeInvalidKey      Code = "INVALID_KEY"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	// Operations the current layout cannot accept
	ErrCodeUnsupportedSize Code = "UNSUPPORTED_SIZE"
	ErrCodeHistoryEmpty    Code = "HISTORY_EMPTY"
	ErrCodePlacement       Code = "PLACEMENT_FAILED"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeWidgetNotFound Code = "WIDGET_NOT_FOUND"
	ErrCodeTypeNotFound   Code = "TYPE_NOT_FOUND"

	// Persistence errors
	ErrCodeStorage   Code = "STORAGE"
	ErrCodeMigration Code = "MIGRATION"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error with cause attached. The cause is reachable through
// the standard errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the outermost *Error in err's chain has code. Unlike
// the standard errors.Is it compares codes, not values.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix, for display.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNotFound reports whether err carries any of the not-found codes.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeWidgetNotFound, ErrCodeTypeNotFound:
		return true
	}
	return false
}

// IsInvalid reports whether err is a validation failure caused by the caller's input.
func IsInvalid(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidPosition, ErrCodeInvalidSize,
		ErrCodeInvalidKey, ErrCodeInvalidConfig, ErrCodeUnsupportedSize:
		return true
	}
	return false
}
