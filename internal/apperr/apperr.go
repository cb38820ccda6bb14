package apperr

import (
	"errors"
	"fmt"
)

// Code identifies a stable error category exposed to API clients.
type Code string

const (
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeNotFound            Code = "NOT_FOUND"
	CodePermissionDenied    Code = "PERMISSION_DENIED"
	CodeFailedPrecondition  Code = "FAILED_PRECONDITION"
	CodeNoSuitableCandidate Code = "NO_SUITABLE_CANDIDATE"
	CodeNoAvailableDoctor   Code = "NO_AVAILABLE_DOCTOR"
	CodeUnavailable         Code = "UNAVAILABLE"
	CodeInternal            Code = "INTERNAL"
)

// Error is a typed application error carrying a stable code and a
// human-readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a typed error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. If err is
// already a typed error it is returned unchanged, so downstream
// failures keep their original classification.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Code: code, Message: message, Err: err}
}

// Internal wraps an unexpected downstream failure.
func Internal(err error, message string) error {
	return Wrap(err, CodeInternal, message)
}

// CodeOf extracts the code from an error, defaulting to Internal for
// untyped errors.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// MessageOf extracts the client-facing message from an error.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "An unexpected error occurred"
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
