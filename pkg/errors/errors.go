package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Catalog load errors (fatal: the session cannot start)
	ErrCatalogLoad       ErrorCode = "CATALOG_LOAD"
	ErrMalformedTemplate ErrorCode = "MALFORMED_TEMPLATE"
	ErrMalformedPattern  ErrorCode = "MALFORMED_PATTERN"
	ErrCyclicTemplate    ErrorCode = "CYCLIC_TEMPLATE"

	// Per-item resolution errors (recoverable, routed to the report)
	ErrUnresolvedReference ErrorCode = "UNRESOLVED_REFERENCE"
	ErrUnmatched           ErrorCode = "UNMATCHED"
	ErrAmbiguous           ErrorCode = "AMBIGUOUS"

	// Snapshot errors
	ErrSnapshotParse ErrorCode = "SNAPSHOT_PARSE"
)

// BidsmapError represents a structured error with code and details
type BidsmapError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *BidsmapError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *BidsmapError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *BidsmapError) Is(target error) bool {
	var targetErr *BidsmapError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new BidsmapError with the given code and message
func New(code ErrorCode, message string) *BidsmapError {
	return &BidsmapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new BidsmapError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *BidsmapError {
	return &BidsmapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a BidsmapError
func Wrap(err error, code ErrorCode, message string) *BidsmapError {
	if err == nil {
		return nil
	}
	return &BidsmapError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *BidsmapError {
	if err == nil {
		return nil
	}
	return &BidsmapError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *BidsmapError) WithDetail(key string, value interface{}) *BidsmapError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var bmErr *BidsmapError
	if errors.As(err, &bmErr) {
		return bmErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a BidsmapError
func GetErrorCode(err error) ErrorCode {
	var bmErr *BidsmapError
	if errors.As(err, &bmErr) {
		return bmErr.Code
	}
	return ErrUnknown
}

// IsFatal reports whether an error is fatal to catalog load. Per-item
// resolution conditions are recoverable and never abort a batch.
func IsFatal(err error) bool {
	switch GetErrorCode(err) {
	case ErrCatalogLoad, ErrMalformedTemplate, ErrMalformedPattern, ErrCyclicTemplate:
		return true
	}
	return false
}
