package errors

import (
	"errors"
	"fmt"
	"maps"
)

// Error is a pre-classified failure. Internal code returns it when it already
// knows which wire code applies; HandleError then keeps code, message and details.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetail returns a copy of e with key set in its details.
func (e *Error) WithDetail(key string, value any) *Error {
	out := *e
	out.Details = maps.Clone(e.Details)
	if out.Details == nil {
		out.Details = make(map[string]any, 1)
	}
	out.Details[key] = value
	return &out
}

// New creates a classified error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap classifies an existing error. A nil err yields nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// As reports whether err carries a classified *Error and returns it.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) && target != nil {
		return target, true
	}
	return nil, false
}

// CodeOf returns the classified code of err, or CodeServer.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeServer
}

// Helpers for common codes

func NewValidationError(message string) *Error { return New(CodeValidation, message) }

func NewNotFoundError(message string) *Error { return New(CodeNotFound, message) }

func NewBadRequestError(message string) *Error { return New(CodeBadRequest, message) }

func NewRateLimitedError(message string) *Error { return New(CodeRateLimited, message) }

func WrapDatabaseError(err error, message string) *Error { return Wrap(err, CodeDatabase, message) }

func WrapExternalAPIError(err error, message string) *Error {
	return Wrap(err, CodeExternalAPI, message)
}

func WrapServiceUnavailable(err error, message string) *Error {
	return Wrap(err, CodeServiceUnavailable, message)
}

func WrapTimeout(err error, message string) *Error { return Wrap(err, CodeTimeout, message) }
