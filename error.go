package nox

import (
	"bytes"
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECORRUPT  = "corrupt"
	EFETCH    = "fetch"
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	EPARSE    = "parse"
	EPROBE    = "probe"
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract out the code & message.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string

	// Logical operation and nested error, for errors raised while
	// wrapping a lower level failure.
	Op  string
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var buf bytes.Buffer

	if e.Op != "" {
		fmt.Fprintf(&buf, "%s: ", e.Op)
	}

	if e.Err != nil {
		if e.Message != "" {
			fmt.Fprintf(&buf, "%s: ", e.Message)
		}
		buf.WriteString(e.Err.Error())
		return buf.String()
	}

	if e.Code != "" && e.Message == "" {
		fmt.Fprintf(&buf, "<%s> ", e.Code)
	}
	buf.WriteString(e.Message)
	return buf.String()
}

// Unwrap returns the nested error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of the root application error, if available.
// Otherwise returns EINTERNAL. Returns an empty string for a nil error.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Code != "" {
			return e.Code
		}
		if e.Err != nil {
			return ErrorCode(e.Err)
		}
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the error, if available.
// Otherwise returns a generic error message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return ErrorMessage(e.Err)
		}
	}
	return "An internal error has occurred."
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError returns an Error with the given code that wraps err.
// The operation names the step that failed, e.g. "fetch" or "parse".
func WrapError(code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}
