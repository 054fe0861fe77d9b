// Package mmverr defines the error taxonomy shared by every mmv component.
package mmverr

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the kind of failure independent of its message.
type ErrorCode string

const (
	ErrUnknown ErrorCode = "UNKNOWN"

	// ErrNotFound means discovery found no file for the source pattern.
	ErrNotFound ErrorCode = "NOT_FOUND"
	// ErrPath means a wildcard or placeholder sits outside the filename segment.
	ErrPath ErrorCode = "PATH"
	// ErrMatch means a discovered path does not satisfy the compiled matcher.
	ErrMatch ErrorCode = "MATCH"
	// ErrFileExists means the destination exists and overwriting is disabled.
	ErrFileExists ErrorCode = "FILE_EXISTS"
	// ErrIO wraps a failed rename, copy or delete.
	ErrIO ErrorCode = "IO"

	ErrConfig  ErrorCode = "CONFIG"
	ErrJournal ErrorCode = "JOURNAL"
)

// Error carries a code, a message for the user and optional key/value
// details for the logs. Cause is the underlying error, if any.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error renders "[CODE] message", followed by the cause when there is one.
func (e *Error) Error() string {
	msg := "[" + string(e.Code) + "] " + e.Message
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so errors.Is(err, New(ErrPath, ""))
// tests the kind of err.
func (e *Error) Is(target error) bool {
	var other *Error
	return errors.As(target, &other) && other.Code == e.Code
}

// New returns an Error without details.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to err. A nil err stays nil.
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetail records key=value on e and returns e for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// IsCode reports whether err, or an error it wraps, is an *Error with code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// CodeOf returns the code of err, or ErrUnknown if err is not an *Error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// DetailsOf returns the details attached to err, or nil.
func DetailsOf(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
