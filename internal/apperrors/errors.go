// Package apperrors defines the domain error taxonomy shared by services and
// the HTTP error handler.
package apperrors

import (
	"errors"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation marks missing or malformed client input.
	CodeValidation Code = "validation"
	// CodeConflict marks a duplicate identity field.
	CodeConflict Code = "conflict"
	// CodeAuthentication marks bad credentials or a bad/expired/missing token.
	CodeAuthentication Code = "authentication"
	// CodeInternal marks storage or hashing failures.
	CodeInternal Code = "internal"
)

// InternalMessage is the only message an internal error exposes to clients.
const InternalMessage = "Internal server error"

// HTTPStatus maps the code onto the status returned to HTTP clients.
// Conflicts use 400 to match the public register contract.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation, CodeConflict:
		return http.StatusBadRequest
	case CodeAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Client-facing message
	Field   string // Offending input field, if any
	Cause   error  // Wrapped underlying error, never shown to clients
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// PublicMessage returns what may be shown to a client.
func (e *Error) PublicMessage() string {
	if e.Code == CodeInternal {
		return InternalMessage
	}
	return e.Message
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation is shorthand for a CodeValidation error.
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// Conflict creates a CodeConflict error naming the colliding field.
func Conflict(field, message string) *Error {
	return &Error{Code: CodeConflict, Message: message, Field: field}
}

// Authentication is shorthand for a CodeAuthentication error.
func Authentication(message string) *Error {
	return New(CodeAuthentication, message)
}

// Internal wraps cause as a CodeInternal error.
func Internal(message string, cause error) *Error {
	return Wrap(CodeInternal, message, cause)
}

// CodeOf returns the code of the first domain error in err's chain, or
// CodeInternal when the chain holds none.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Sentinels for errors.Is checks against a code.
var (
	ErrValidation     = New(CodeValidation, "validation")
	ErrConflict       = New(CodeConflict, "conflict")
	ErrAuthentication = New(CodeAuthentication, "authentication")
	ErrInternal       = New(CodeInternal, "internal")
)
