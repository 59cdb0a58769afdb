package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Minutes error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrInvalidState   ErrorCode = "INVALID_STATE"   // 409
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
	ErrStorageRead    ErrorCode = "STORAGE_READ"    // 500 (absorbed by the store, never surfaced)
	ErrStorageWrite   ErrorCode = "STORAGE_WRITE"   // 507
)

// MinutesError represents a structured error with code, status, and details.
type MinutesError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *MinutesError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *MinutesError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *MinutesError {
	return &MinutesError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error when a meeting or chunk cannot be found.
// kind names what was looked up ("meeting", "chunk").
func NewNotFound(kind, identifier string) *MinutesError {
	return &MinutesError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewInvalidState creates a 409 error for an operation the current session state forbids.
func NewInvalidState(op, state string) *MinutesError {
	return &MinutesError{
		Code:    ErrInvalidState,
		Status:  409,
		Message: fmt.Sprintf("cannot %s while session is %s", op, state),
		Details: map[string]any{"operation": op, "state": state},
	}
}

// NewCancelled creates a 499 error when an operation is interrupted by context cancellation.
func NewCancelled(op string) *MinutesError {
	return &MinutesError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewStorageRead creates a 500 error for unreadable or corrupt persisted data.
func NewStorageRead(err error) *MinutesError {
	return &MinutesError{
		Code:    ErrStorageRead,
		Status:  500,
		Message: causeMessage("storage read failed", err),
		cause:   err,
	}
}

// NewStorageWrite creates a 507 error when the persistence medium rejects a write.
func NewStorageWrite(err error) *MinutesError {
	return &MinutesError{
		Code:    ErrStorageWrite,
		Status:  507,
		Message: causeMessage("storage write failed", err),
		cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *MinutesError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &MinutesError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error (or anything it wraps) is a MinutesError with the given code.
func Is(err error, code ErrorCode) bool {
	var mErr *MinutesError
	if stderrors.As(err, &mErr) {
		return mErr.Code == code
	}
	return false
}

func causeMessage(prefix string, err error) string {
	if err == nil {
		return prefix
	}
	return prefix + ": " + err.Error()
}
