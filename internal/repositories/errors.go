package repositories

import "fmt"

// ErrorCode enumerates repository error causes.
type ErrorCode string

const (
	// ErrorCodeUnknown represents an unspecified failure.
	ErrorCodeUnknown ErrorCode = "unknown"
	// ErrorCodeNotFound indicates the requested record does not exist.
	ErrorCodeNotFound ErrorCode = "not_found"
	// ErrorCodeConflict indicates the write collided with an existing record.
	ErrorCodeConflict ErrorCode = "conflict"
)

// Error is the concrete RepositoryError implementation shared by stores.
type Error struct {
	Op      string
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap exposes the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsNotFound implements RepositoryError.
func (e *Error) IsNotFound() bool { return e != nil && e.Code == ErrorCodeNotFound }

// IsConflict implements RepositoryError.
func (e *Error) IsConflict() bool { return e != nil && e.Code == ErrorCodeConflict }

// NewError constructs a typed repository error.
func NewError(op string, code ErrorCode, message string, err error) *Error {
	if message == "" {
		message = string(code)
	}
	return &Error{Op: op, Code: code, Message: message, Err: err}
}

// NotFound builds a not-found error for the given record.
func NotFound(op, kind, id string) *Error {
	return NewError(op, ErrorCodeNotFound, fmt.Sprintf("%s %s not found", kind, id), nil)
}

// Conflict builds a conflict error for the given record.
func Conflict(op, kind, id string) *Error {
	return NewError(op, ErrorCodeConflict, fmt.Sprintf("%s %s already exists", kind, id), nil)
}
