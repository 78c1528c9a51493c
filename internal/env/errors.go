package env

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes Environment errors.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates a request that could not be built
	// locally. No network attempt was made.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// ErrCodeFetch indicates the network call itself failed.
	ErrCodeFetch ErrorCode = "FETCH_FAILED"

	// ErrCodeStatus indicates a non-success HTTP status.
	ErrCodeStatus ErrorCode = "BAD_STATUS"

	// ErrCodeDecode indicates a response body that does not match the
	// expected shape.
	ErrCodeDecode ErrorCode = "DECODE_FAILED"

	// ErrCodeStorageDecode indicates a stored value that does not decode as
	// the requested type.
	ErrCodeStorageDecode ErrorCode = "STORAGE_DECODE"

	// ErrCodeStorage indicates the storage backend failed.
	ErrCodeStorage ErrorCode = "STORAGE_FAILED"
)

// Error is the error type returned by Environment operations and helpers.
//
// Callers above the transport layer rarely need to inspect it: the
// aggregation engine treats every failure the same. The codes exist for
// logging and for tests.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// URL is the request URL (fetch errors).
	URL string

	// Key is the storage key (storage errors).
	Key string

	// Status is the HTTP status (ErrCodeStatus only).
	Status int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	subject := e.URL
	if e.Key != "" {
		subject = "key " + e.Key
	}
	switch {
	case e.Code == ErrCodeStatus:
		return fmt.Sprintf("%s: %s returned status %d", e.Code, subject, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, subject, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Code, subject)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInvalidRequest returns true if err is a local request construction error.
func IsInvalidRequest(err error) bool {
	return CodeOf(err) == ErrCodeInvalidRequest
}

// IsTransportError returns true if err is a network, status or decode error.
func IsTransportError(err error) bool {
	switch CodeOf(err) {
	case ErrCodeFetch, ErrCodeStatus, ErrCodeDecode:
		return true
	}
	return false
}

// IsStorageDecodeError returns true if a stored value failed to decode.
func IsStorageDecodeError(err error) bool {
	return CodeOf(err) == ErrCodeStorageDecode
}

// NewInvalidRequestError creates an Error for a request that failed local validation.
func NewInvalidRequestError(url string, err error) *Error {
	return &Error{Code: ErrCodeInvalidRequest, URL: url, Err: err}
}

// NewFetchError creates an Error for a failed network call.
func NewFetchError(url string, err error) *Error {
	return &Error{Code: ErrCodeFetch, URL: url, Err: err}
}

// NewStatusError creates an Error for a non-success status.
func NewStatusError(url string, status int) *Error {
	return &Error{Code: ErrCodeStatus, URL: url, Status: status}
}

// NewDecodeError creates an Error for an undecodable response body.
func NewDecodeError(url string, err error) *Error {
	return &Error{Code: ErrCodeDecode, URL: url, Err: err}
}

// NewStorageDecodeError creates an Error for an undecodable stored value.
func NewStorageDecodeError(key string, err error) *Error {
	return &Error{Code: ErrCodeStorageDecode, Key: key, Err: err}
}

// NewStorageError creates an Error for a failing storage backend.
func NewStorageError(key string, err error) *Error {
	return &Error{Code: ErrCodeStorage, Key: key, Err: err}
}
