package instant

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// ---------------------------------------------------------------------
// JSON / TEXT
// ---------------------------------------------------------------------

// MarshalJSON encodes the instant as a JSON string in the wire form.
func (i Instant) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(i.String())), nil
}

// UnmarshalJSON decodes a JSON string in the wire form. A JSON null leaves
// the receiver unchanged.
func (i *Instant) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("instant: json value must be a string: %w", err)
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}

	*i = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (i Instant) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Instant) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*i = parsed
	return nil
}

// ---------------------------------------------------------------------
// SQL INTERFACES
// ---------------------------------------------------------------------

// Value implements driver.Valuer. Instants are stored as wire-form text so
// the nanosecond remainder survives databases with microsecond timestamps.
func (i Instant) Value() (driver.Value, error) {
	if !i.inWireRange() {
		return nil, fmt.Errorf("%w: year outside 0000-9999 cannot be stored", ErrOutOfRange)
	}
	return i.String(), nil
}

// Scan implements sql.Scanner. It accepts wire-form text as string or
// []byte, and time.Time for timestamp columns.
func (i *Instant) Scan(value any) error {
	var (
		parsed Instant
		err    error
	)

	switch v := value.(type) {
	case string:
		parsed, err = Parse(v)
	case []byte:
		parsed, err = Parse(string(v))
	case time.Time:
		parsed, err = FromTime(v)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedScan, value)
	}
	if err != nil {
		return err
	}

	*i = parsed
	return nil
}

// ---------------------------------------------------------------------
// LOGGING
// ---------------------------------------------------------------------

// LogValue implements slog.LogValuer.
func (i Instant) LogValue() slog.Value {
	return slog.StringValue(i.String())
}
