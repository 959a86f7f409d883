package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind values are part of the public response contract.
const (
	KindInvalidInput     = "InvalidInput"
	KindNotFound         = "NotFound"
	KindConflict         = "Conflict"
	KindRateLimited      = "RateLimited"
	KindStoreUnavailable = "StoreUnavailable"
	KindInternal         = "Internal"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"error"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same kind, so clones and wraps of the
// predefined errors match with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a new Error instance.
func New(kind string, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, kind string, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidInput     = New(KindInvalidInput, http.StatusBadRequest, "invalid input")
	ErrNotFound         = New(KindNotFound, http.StatusNotFound, "resource not found")
	ErrConflict         = New(KindConflict, http.StatusConflict, "conflict")
	ErrRateLimited      = New(KindRateLimited, http.StatusTooManyRequests, "too many requests")
	ErrStoreUnavailable = New(KindStoreUnavailable, http.StatusInternalServerError, "store unavailable")
	ErrInternal         = New(KindInternal, http.StatusInternalServerError, "internal server error")

	// ErrCacheMiss is returned by cache repositories when no value is stored for a key.
	ErrCacheMiss = errors.New("cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Kind, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// StoreUnavailable wraps a storage failure with the StoreUnavailable kind.
func StoreUnavailable(err error, message string) *Error {
	if message == "" {
		message = ErrStoreUnavailable.Message
	}
	return Wrap(err, ErrStoreUnavailable.Kind, ErrStoreUnavailable.Status, message)
}
