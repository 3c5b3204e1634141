package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is wrapped by every NewNotFound error.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is wrapped by every NewConflict error.
	ErrConflict = errors.New("resource conflict")
)

// Type groups errors by who is at fault.
type Type int

const (
	// TypeServer is a failure on our side.
	TypeServer Type = iota
	// TypeBusiness is a request that is well formed but cannot be honored.
	TypeBusiness
	// TypeValidation is a request that is malformed or out of bounds.
	TypeValidation
)

var typeNames = map[Type]string{
	TypeServer:     "ERROR_TYPE_SERVER",
	TypeBusiness:   "ERROR_TYPE_BUSINESS",
	TypeValidation: "ERROR_TYPE_VALIDATION",
}

var typeFallbackMsg = map[Type]string{
	TypeServer:     "Internal error",
	TypeBusiness:   "Logical business not meet with requirement",
	TypeValidation: "Validation violation",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "ERROR_TYPE_UNKNOWN"
}

// Code is the stable identifier the router maps to an HTTP status.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	// CodeOutOfRange marks a value the timeline cannot hold, such as an
	// epoch count past the millisecond int64 range.
	CodeOutOfRange
	CodeTimeout
)

var codes = map[Code]struct {
	name   string
	status int
}{
	CodeInternal:      {"ERROR_CODE_INTERNAL", http.StatusInternalServerError},
	CodeInvalidFormat: {"ERROR_CODE_INVALID_FORMAT", http.StatusBadRequest},
	CodeInvalidInput:  {"ERROR_CODE_INVALID_INPUT", http.StatusUnprocessableEntity},
	CodeNotFound:      {"ERROR_CODE_NOT_FOUND", http.StatusNotFound},
	CodeConflict:      {"ERROR_CODE_CONFLICT", http.StatusConflict},
	CodeOutOfRange:    {"ERROR_CODE_OUT_OF_RANGE", http.StatusUnprocessableEntity},
	CodeTimeout:       {"ERROR_CODE_TIMEOUT", http.StatusRequestTimeout},
}

func (c Code) String() string {
	if info, ok := codes[c]; ok {
		return info.name
	}
	return codes[CodeInternal].name
}

// Error carries a user-facing message, a Type and a Code next to an
// optional wrapped cause. Validation errors may also carry per-field
// messages.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error prefers the wrapped cause, then the message, then a default for
// the error's Type.
func (e *Error) Error() string {
	switch {
	case e.err != nil:
		return e.err.Error()
	case e.msg != "":
		return e.msg
	}
	if m, ok := typeFallbackMsg[e.errType]; ok {
		return m
	}
	return "Unknown error"
}

// String is the verbose form used in logs.
func (e *Error) String() string {
	return fmt.Sprintf("Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string { return e.msg }

func (e *Error) Type() Type { return e.errType }

func (e *Error) Code() Code { return e.code }

// Fields returns field name to message pairs, or nil.
func (e *Error) Fields() map[string]string { return e.fields }

func (e *Error) Unwrap() error { return e.err }

// StatusCode maps Code to an HTTP status; unknown codes are 500.
func (e *Error) StatusCode() int {
	if info, ok := codes[e.code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

func newError(err error, msg string, et Type, code Code) *Error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer hides err behind a generic message.
func NewServer(err error) error {
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewInvalidInput wraps a validator error, or builds field messages from
// kv pairs (field, message, field, message, ...). An odd kv list is a
// programming error and degrades to an invalid format error.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return newError(err, "Validation error", TypeValidation, CodeInvalidInput)
	}
	if len(kv)%2 != 0 {
		return newError(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}

	e := newError(nil, "Validation error", TypeValidation, CodeInvalidInput)
	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

func NewNotFound(msg string) error {
	return newError(ErrNotFound, msg, TypeBusiness, CodeNotFound)
}

// NewConflict is for duplicates and for work already in flight.
func NewConflict(msg string) error {
	return newError(ErrConflict, msg, TypeBusiness, CodeConflict)
}

func NewOutOfRange(err error, msg string) error {
	return newError(err, msg, TypeValidation, CodeOutOfRange)
}

// NewInvalidFormat reports an unreadable request. The first msg, if any,
// replaces the default message.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return newError(nil, msg, TypeValidation, CodeInvalidFormat)
}
