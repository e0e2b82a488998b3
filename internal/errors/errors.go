// Package errors provides the structured error taxonomy shared by the round
// lifecycle, the store and the HTTP transport.
package errors

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unclassified error.
	CodeUnknown Code = "UNKNOWN"

	// CodeNotFound means no entity or relationship path resolves for the
	// given identifiers.
	CodeNotFound Code = "NOT_FOUND"
	// CodeInvalidState means the round is outside the status the operation
	// requires.
	CodeInvalidState Code = "INVALID_STATE"
	// CodeInvalidArgument means the request itself is malformed.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	// CodeStorage means the underlying store failed.
	CodeStorage Code = "STORAGE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidState:
		return http.StatusConflict
	case CodeInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs and responses)
	Metadata map[string]string // Identifiers involved in the failure
	Cause    error             // Wrapped underlying error
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

// Sentinels for errors.Is comparisons by code.
var (
	ErrNotFound     = &Error{Code: CodeNotFound}
	ErrInvalidState = &Error{Code: CodeInvalidState}
)

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithMetadata creates a domain error carrying the identifiers involved.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NotFound is shorthand for a CodeNotFound error.
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// InvalidState is shorthand for a CodeInvalidState error.
func InvalidState(message string) *Error {
	return New(CodeInvalidState, message)
}

// InvalidArgument is shorthand for a CodeInvalidArgument error.
func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

// Storage wraps a store failure. A nil cause yields nil so callers can wrap
// unconditionally.
func Storage(message string, cause error) error {
	if cause == nil {
		return nil
	}
	var domainErr *Error
	if errors.As(cause, &domainErr) {
		return cause
	}
	return Wrap(CodeStorage, message, cause)
}

// CodeOf extracts the domain code of err, or CodeUnknown.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}

// HTTPStatus returns the HTTP status for any error.
func HTTPStatus(err error) int {
	return CodeOf(err).HTTPStatus()
}
