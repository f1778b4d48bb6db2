// Package errs implements the error taxonomy used throughout the compiler.
package errs

import (
	"errors"
	"fmt"
)

// Code identifies one of the error classes a pass may fail with.
type Code string

const (
	InvalidArgument  Code = "InvalidArgument"
	FileNotFound     Code = "FileNotFound"
	IO               Code = "IO"
	Parse            Code = "Parse"
	InvalidFormat    Code = "InvalidFormat"
	InvalidModel     Code = "InvalidModel"
	InvalidProcess   Code = "InvalidProcess"
	Cast             Code = "Cast"
	IndexOutOfBounds Code = "IndexOutOfBounds"
	IllegalState     Code = "IllegalState"
	UnknownArraySize Code = "UnknownArraySize"
	NotSupported     Code = "NotSupported"
	OutOfMemory      Code = "OutOfMemory"
)

// Pos is an optional source position attached to a Parse or InvalidFormat error.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return ""
	}
	if p.Line == 0 {
		return p.File
	}
	if p.Column == 0 {
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Error is the single error type produced by every pass in the compiler.
type Error struct {
	Code    Code
	Message string
	Pos     Pos
	cause   error
}

func (e *Error) Error() string {
	if pos := e.Pos.String(); pos != "" {
		return fmt.Sprintf("%s: %s: %s", pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match err against any *Error target carrying the same
// Code, rather than requiring an identical *Error instance. A bare Code is
// not an error value, so it cannot itself be the target; CodeOf reads the
// code directly.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates an *Error with no position information.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// At creates an *Error carrying a source position.
func At(code Code, pos Pos, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// Wrap creates an *Error that retains cause for errors.Unwrap/errors.As chains.
func Wrap(code Code, cause error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// CodeOf returns the Code of err if it is (or wraps) an *Error, and ok=true.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
