// Package apperr defines the error taxonomy returned by the application service.
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies an Error for callers.
type Code string

const (
	CodeValidation       Code = "validation_failed"
	CodeNotFound         Code = "not_found"
	CodeStoreUnavailable Code = "store_unavailable"
	CodeUploadFailed     Code = "upload_failed"
)

// Error carries a Code, a user-facing message and the underlying cause.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// NewValidationError builds a CodeValidation error naming the violated fields.
func NewValidationError(message string, fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// Is reports whether err or anything it wraps is an *Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
