// Package errors provides structured error types for blockstack.
//
// Graph operations inside the engine return plain sentinel errors. At the
// boundaries (snapshot import, palette files, stores, the CLI) failures are
// wrapped in an [*Error] carrying a machine-readable [Code], so callers can
// branch on the category and show a short message to the user.
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: input validation failures
//   - *NOT_FOUND: missing resources
//   - STORE_*: persistence backends
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLanguage, "unknown language: %s", lang)
//	if errors.Is(err, errors.ErrCodeInvalidLanguage) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidSnapshot, origErr, "import %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidLanguage   Code = "INVALID_LANGUAGE"
	ErrCodeInvalidDefinition Code = "INVALID_DEFINITION"
	ErrCodeInvalidSnapshot   Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidKey        Code = "INVALID_KEY"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeBlockNotFound Code = "BLOCK_NOT_FOUND"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

	// Persistence errors
	ErrCodeStoreUnavailable Code = "STORE_UNAVAILABLE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded failure raised at a package boundary.
type Error struct {
	Code    Code
	Message string
	Cause   error // nil when the failure originated here
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause == nil {
		return msg
	}
	return msg + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message and no cause.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an *Error that keeps cause reachable through errors.Is and
// errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return code != "" && GetCode(err) == code
}

// UserMessage drops the code prefix. The cause, if any, is kept since it
// usually names the offending file, key or block.
func UserMessage(err error) string {
	e, ok := asError(err)
	switch {
	case !ok:
		return err.Error()
	case e.Cause != nil:
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
