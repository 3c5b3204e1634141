package instant

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"time"

	"github.com/shandysiswandi/goinstant/internal/pkg/numeric"
)

// ErrTooManyFields indicates FromUTC received more than the four optional
// sub-minute fields.
var ErrTooManyFields = errors.New("instant: too many calendar fields")

// FromUTC builds an Instant from proleptic Gregorian UTC calendar fields.
// month is 1-based. rest holds, in order, the optional second, millisecond,
// microsecond and nanosecond, each defaulting to zero.
//
// Fields outside their natural range roll over the way time.Date does. The
// microsecond and nanosecond parts are combined into the sub-millisecond
// remainder and carried or borrowed until it lies in [0, 999999].
func FromUTC(year, month, day, hour, minute int, rest ...int) (Instant, error) {
	if len(rest) > 4 {
		return Instant{}, fmt.Errorf("%w: got %d optional fields, want at most 4", ErrTooManyFields, len(rest))
	}

	var f [4]int
	copy(f[:], rest)
	second, millisecond, microsecond, nanosecond := f[0], f[1], f[2], f[3]

	unix := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC).Unix()

	ms, ok := mulInt64(unix, millisPerSec)
	if !ok {
		return Instant{}, fmt.Errorf("%w: year %d", ErrOutOfRange, year)
	}
	if ms, ok = addInt64(ms, int64(millisecond)); !ok {
		return Instant{}, fmt.Errorf("%w: millisecond %d", ErrOutOfRange, millisecond)
	}

	// Move whole milliseconds out of the microsecond and nanosecond fields
	// first so the remainder arithmetic cannot overflow.
	usCarry, us := floorDivMod(int64(microsecond), microsPerMilli)
	if ms, ok = addInt64(ms, usCarry); !ok {
		return Instant{}, fmt.Errorf("%w: microsecond %d", ErrOutOfRange, microsecond)
	}
	nsCarry, ns := floorDivMod(int64(nanosecond), nanosPerMilli)
	if ms, ok = addInt64(ms, nsCarry); !ok {
		return Instant{}, fmt.Errorf("%w: nanosecond %d", ErrOutOfRange, nanosecond)
	}

	return fromParts(ms, us*nanosPerMicro+ns)
}

// FromTime converts a time.Time, keeping its full nanosecond precision.
func FromTime(t time.Time) (Instant, error) {
	ms, ok := mulInt64(t.Unix(), millisPerSec)
	if !ok {
		return Instant{}, fmt.Errorf("%w: %s", ErrOutOfRange, t.UTC().Format(time.RFC3339))
	}
	return fromParts(ms, int64(t.Nanosecond()))
}

// FromEpochSeconds builds an Instant from seconds since the epoch. v may be
// any numeric kind or numeric string; see numeric.Number.
func FromEpochSeconds(v any) (Instant, error) {
	sec, err := numeric.Number(v)
	if err != nil {
		return Instant{}, err
	}
	return FromEpochMilliseconds(sec * millisPerSec)
}

// FromEpochMilliseconds builds an Instant from milliseconds since the epoch.
// v may be any numeric kind or numeric string. A fractional count is floored
// to whole milliseconds; the sub-millisecond remainder is always zero.
func FromEpochMilliseconds(v any) (Instant, error) {
	ms, err := numeric.Number(v)
	if err != nil {
		return Instant{}, err
	}

	ms = math.Floor(ms)
	if ms < math.MinInt64 || ms >= math.MaxInt64 {
		return Instant{}, fmt.Errorf("%w: %v milliseconds", ErrOutOfRange, v)
	}

	return Instant{ms: int64(ms)}, nil
}

// FromEpochMicroseconds builds an Instant from exact microseconds since the epoch.
func FromEpochMicroseconds(micros *big.Int) (Instant, error) {
	if micros == nil {
		return Instant{}, &TypeConstructionError{Arg: "microseconds"}
	}
	return New(new(big.Int).Mul(micros, bigNanosPerMicro))
}

// FromEpochNanoseconds builds an Instant from exact nanoseconds since the epoch.
func FromEpochNanoseconds(nanos *big.Int) (Instant, error) {
	return New(nanos)
}
