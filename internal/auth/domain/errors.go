package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures for the transport layer. The set is closed:
// handlers map each kind to one HTTP status.
type ErrorKind string

const (
	// KindUnauthorized covers bad, expired or malformed tokens and
	// credential mismatches.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindConflict covers duplicate users and redundant state toggles.
	KindConflict ErrorKind = "conflict"
	// KindNotFound is surfaced only where enumeration risk is acceptable.
	KindNotFound ErrorKind = "not_found"
	// KindApp covers generic business-rule violations.
	KindApp ErrorKind = "app_error"
	// KindValidation covers malformed input shapes.
	KindValidation ErrorKind = "validation_error"
)

// Error is the failure type every controller operation returns for expected
// failures. Unexpected failures (store I/O, crypto) stay plain wrapped errors
// and surface as 500s.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Unauthorizedf(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func AppErrorf(format string, args ...any) *Error {
	return &Error{Kind: KindApp, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// AsError unwraps err into a *Error if one is in the chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
