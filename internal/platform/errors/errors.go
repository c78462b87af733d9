// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	stderrs "errors"
	"fmt"
)

// ErrorCode defines supported error codes used across the tool
// Values are stable for report compatibility; add sparingly
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodeCanceled is for work abandoned because the run was canceled or aborted
	ErrorCodeCanceled

	// ErrorCodeInvalidArgument is for bad command line input
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is for options that fail validation
	ErrorCodeValidation

	// ErrorCodeJSON is for input that is not syntactically valid JSON
	ErrorCodeJSON

	// ErrorCodeShape is for valid JSON that is not an array of objects
	ErrorCodeShape

	// ErrorCodeNotFound is for missing files
	ErrorCodeNotFound

	// ErrorCodeIO is for read/write failures other than a missing file
	ErrorCodeIO
)

// Kind turns an ErrorCode into the stable label used in reports
func Kind(c ErrorCode) string {
	switch c {
	case ErrorCodeCanceled:
		return "canceled"
	case ErrorCodeInvalidArgument:
		return "invalid_argument"
	case ErrorCodeValidation:
		return "invalid_options"
	case ErrorCodeJSON:
		return "malformed_input"
	case ErrorCodeShape:
		return "shape_mismatch"
	case ErrorCodeNotFound, ErrorCodeIO:
		return "io"
	default:
		return "unknown"
	}
}

// ExitCode maps an ErrorCode to a process exit status. Usage problems get 2
func ExitCode(c ErrorCode) int {
	switch c {
	case ErrorCodeInvalidArgument, ErrorCodeValidation:
		return 2
	default:
		return 1
	}
}

// Error is the structured error type with wrapping and metadata
// msg is human/developer facing; code is machine facing
// field is optional (offending option or entry); op is optional operation tag
// orig is the wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Wire is the serializable form written into run reports
type Wire struct {
	Code    ErrorCode `json:"code" yaml:"code"`
	Kind    string    `json:"kind" yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
	Field   string    `json:"field,omitempty" yaml:"field,omitempty"`
	Op      string    `json:"op,omitempty" yaml:"op,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// ToWire converts an *Error to a Wire payload. Message keeps the cause
// because report readers have no other way to see it
func (e *Error) ToWire() Wire {
	return Wire{Code: e.code, Kind: Kind(e.code), Message: e.Error(), Field: e.field, Op: e.op}
}

// WireFrom converts any error into a Wire payload with best-effort mapping
// If err is nil, returns the zero-value Wire (no error)
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Kind: Kind(ErrorCodeUnknown), Message: err.Error()}
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Mutators (copy-on-write)

// WithField attaches a field to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// WithOp attaches an operation label to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		c := *e
		c.op = op
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// Sugar

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// JSONErrf returns a malformed input error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// Canceledf returns a canceled error
func Canceledf(format string, a ...any) error { return Newf(ErrorCodeCanceled, format, a...) }
