package reconcile

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a reconciliation failure
type ErrorCode string

const (
	// ErrCodeParse marks a row whose observation is not a finite non-negative number.
	// The row is skipped.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeStore marks a failed lookup or update. The rest of the document is abandoned.
	ErrCodeStore ErrorCode = "STORE_ERROR"
	// ErrCodeFetch marks a document that could not be retrieved.
	ErrCodeFetch ErrorCode = "FETCH_ERROR"
	// ErrCodeExtract marks a document that was retrieved but yielded no rows.
	ErrCodeExtract ErrorCode = "EXTRACT_ERROR"
)

// Error wraps a reconciliation failure with its code
type Error struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is matches another *Error by code, otherwise defers to the underlying error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewError creates a new Error
func NewError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Underlying: err,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none
func CodeOf(err error) ErrorCode {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	return ""
}
