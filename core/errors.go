package core

import "errors"

// ErrorCode classifies a domain error so the transport layer can map it to
// an HTTP status without inspecting message text.
type ErrorCode string

const (
	// CodeValidation marks malformed or missing input.
	CodeValidation ErrorCode = "validation_error"

	// CodeNotFound marks an unknown entity id or address.
	CodeNotFound ErrorCode = "not_found"

	// CodeForbidden marks an authenticated but unauthorized actor.
	CodeForbidden ErrorCode = "forbidden"

	// CodeConflict marks an operation that would violate a uniqueness invariant.
	CodeConflict ErrorCode = "conflict"

	// CodeInvalidState marks an operation that is illegal given current status.
	CodeInvalidState ErrorCode = "invalid_state"

	// CodeUnauthorized marks a missing, invalid or expired credential.
	CodeUnauthorized ErrorCode = "unauthorized"

	// CodeInternal marks an unanticipated failure.
	CodeInternal ErrorCode = "internal"
)

// Error is the domain error carried across service boundaries.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates an Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// ErrValidation creates a validation error.
func ErrValidation(message string) *Error {
	return NewError(CodeValidation, message)
}

// ErrNotFound creates a not-found error.
func ErrNotFound(message string) *Error {
	return NewError(CodeNotFound, message)
}

// ErrForbidden creates a forbidden error.
func ErrForbidden(message string) *Error {
	return NewError(CodeForbidden, message)
}

// ErrConflict creates a conflict error.
func ErrConflict(message string) *Error {
	return NewError(CodeConflict, message)
}

// ErrInvalidState creates an invalid-state error.
func ErrInvalidState(message string) *Error {
	return NewError(CodeInvalidState, message)
}

// ErrUnauthorized creates an unauthorized error.
func ErrUnauthorized(message string) *Error {
	return NewError(CodeUnauthorized, message)
}

// ErrInternal creates an internal error with a caller-safe message.
func ErrInternal(message string) *Error {
	return NewError(CodeInternal, message)
}

// CodeOf extracts the ErrorCode from err, defaulting to CodeInternal for
// errors that did not originate in this package.
func CodeOf(err error) ErrorCode {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
