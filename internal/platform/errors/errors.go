// Package errors provides the error helpers shared by reconweave packages.
// It wraps the standard errors package with context-carrying helpers and
// the sentinels workers and adapters use to classify failures.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// ErrInvalidInput indicates malformed input (bad value text, bad params).
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates an operation exceeded its time limit.
	ErrTimeout = errors.New("operation timed out")

	// ErrNotFound indicates a lookup returned nothing.
	ErrNotFound = errors.New("resource not found")

	// ErrUnsupported indicates a value or configuration the component cannot handle.
	ErrUnsupported = errors.New("unsupported")

	// ErrRateLimit indicates the remote side asked us to slow down (HTTP 429).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrUnauthorized indicates missing or rejected credentials (HTTP 401/403).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrServiceUnavailable indicates a transient upstream failure (HTTP 502/503/504).
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrProcessFailed indicates an external worker process exited abnormally.
	ErrProcessFailed = errors.New("external process failed")
)

// contextError adds a message in front of an underlying cause.
type contextError struct {
	msg   string
	cause error
}

func (e *contextError) Error() string {
	return e.msg + ": " + e.cause.Error()
}

func (e *contextError) Unwrap() error {
	return e.cause
}

// Wrap adds msg as context to err. Wrap(nil, ...) returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &contextError{msg: msg, cause: err}
}

// Wrapf is Wrap with a formatted message. Wrapf(nil, ...) returns nil.
//
// Example:
//
//	if err != nil {
//	    return errors.Wrapf(err, "worker %s", id)
//	}
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &contextError{msg: fmt.Sprintf(format, args...), cause: err}
}

// Cause walks the Unwrap chain and returns the innermost error.
func Cause(err error) error {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return nil
}

// Is is errors.Is.
func Is(err, target error) bool { return errors.Is(err, target) }

// As is errors.As.
func As(err error, target any) bool { return errors.As(err, target) }

// Unwrap is errors.Unwrap.
func Unwrap(err error) error { return errors.Unwrap(err) }

// New is errors.New.
func New(msg string) error { return errors.New(msg) }

// Errorf is fmt.Errorf, so %w keeps working.
func Errorf(format string, args ...any) error { return fmt.Errorf(format, args...) }

// Join is errors.Join.
func Join(errs ...error) error { return errors.Join(errs...) }

// IsInvalidInput reports whether err is or wraps ErrInvalidInput.
func IsInvalidInput(err error) bool { return Is(err, ErrInvalidInput) }

// IsTimeout reports whether err is or wraps ErrTimeout.
func IsTimeout(err error) bool { return Is(err, ErrTimeout) }

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return Is(err, ErrNotFound) }

// IsUnsupported reports whether err is or wraps ErrUnsupported.
func IsUnsupported(err error) bool { return Is(err, ErrUnsupported) }
