package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Error Code Catalogue
// --------------------------------------------------------------------------

// The numeric error codes are part of the compatibility surface and must not
// change. 1003 is intentionally unused.
const (
	CodeParseError       = 1000 // input was not syntactically valid
	CodeInvalidRequest   = 1001 // well-formed input violating the envelope shape
	CodeMethodNotFound   = 1002 // no handler registered for the method
	CodeInternalError    = 1004 // engine-internal failure, also used on teardown
	CodeRequestTimeout   = 1005 // no reply within the configured window
	CodeGuardError       = 1006 // a guard rejected the call
	CodeApplicationError = 1007 // the handler failed
	CodeTransportError   = 1008 // reserved for the transport boundary
)

// codeNames maps catalogue codes to their human names.
var codeNames = map[int]string{
	CodeParseError:       "parse error",
	CodeInvalidRequest:   "invalid request",
	CodeMethodNotFound:   "method not found",
	CodeInternalError:    "internal error",
	CodeRequestTimeout:   "request timeout",
	CodeGuardError:       "guard error",
	CodeApplicationError: "application error",
	CodeTransportError:   "transport error",
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the structured failure carried by an ErrorResponse and returned by
// futures. Code is always a catalogue value; Detail carries application text
// (e.g. the message of a failed handler) and may be empty.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("rpc error %d (%s): %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("rpc error %d (%s)", e.Code, e.Message)
}

// NewError creates a new Error with the given catalogue code. The message
// defaults to the catalogue name when msg is empty.
func NewError(code int, msg string) *Error {
	if msg == "" {
		msg = codeNames[code]
	}
	return &Error{Code: code, Message: msg}
}

// NewErrorDetail creates a new Error with an explicit detail string.
func NewErrorDetail(code int, msg, detail string) *Error {
	e := NewError(code, msg)
	e.Detail = detail
	return e
}

// NewErrorf creates a catalogue error whose detail is a formatted string.
func NewErrorf(code int, format string, args ...any) *Error {
	return NewErrorDetail(code, codeNames[code], fmt.Sprintf(format, args...))
}

// AsError extracts a *Error from any error, wrapping foreign errors with the
// given fallback code.
func AsError(err error, fallbackCode int) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewErrorDetail(fallbackCode, codeNames[fallbackCode], err.Error())
}
