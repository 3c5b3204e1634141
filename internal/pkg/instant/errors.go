package instant

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrTypeConstruction indicates a constructor received something other
	// than a usable arbitrary-precision integer.
	ErrTypeConstruction = errors.New("instant: must be constructed with a big integer")

	// ErrFormat indicates text that does not match the nine-digit UTC layout.
	ErrFormat = errors.New("instant: invalid date-time-string")

	// ErrOutOfRange indicates the millisecond count does not fit in int64.
	ErrOutOfRange = errors.New("instant: value out of range")

	// ErrUnsupportedScan indicates Scan received a database value it cannot decode.
	ErrUnsupportedScan = errors.New("instant: unsupported scan source")
)

// TypeConstructionError is returned by the big integer constructors when the
// argument is missing.
type TypeConstructionError struct {
	// Arg names the offending argument.
	Arg string
}

// Error implements the error interface.
func (e *TypeConstructionError) Error() string {
	return fmt.Sprintf("%s, got nil %s", ErrTypeConstruction.Error(), e.Arg)
}

// Is reports whether target is ErrTypeConstruction.
func (e *TypeConstructionError) Is(target error) bool {
	return target == ErrTypeConstruction
}

// FormatError is returned by Parse when the input is not a valid
// YYYY-MM-DDTHH:MM:SS.mmmnnnnnnZ string.
type FormatError struct {
	// Input is the rejected text, verbatim.
	Input string
	// Err is the underlying calendar error, if the layout matched but the
	// date-time itself is impossible.
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	msg := ErrFormat.Error() + " " + strconv.Quote(e.Input)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// Unwrap returns the underlying calendar error.
func (e *FormatError) Unwrap() error {
	return e.Err
}
