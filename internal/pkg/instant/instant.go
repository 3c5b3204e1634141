package instant

import (
	"fmt"
	"math"
	"math/big"
	"time"
)

const (
	nanosPerMilli  = 1_000_000
	millisPerSec   = 1_000
	nanosPerMicro  = 1_000
	microsPerMilli = 1_000
)

var (
	bigNanosPerMilli = big.NewInt(nanosPerMilli)
	bigNanosPerMicro = big.NewInt(nanosPerMicro)
)

// Instant is an immutable point on the UTC timeline with nanosecond precision.
//
// The zero value is the Unix epoch, 1970-01-01T00:00:00.000000000Z.
type Instant struct {
	ms int64 // milliseconds since the epoch
	ns int64 // nanoseconds within the millisecond, always in [0, 999999]
}

// New builds an Instant from the exact number of nanoseconds since the epoch.
//
// The value is split with floor division, so negative inputs borrow from the
// millisecond count and the remainder stays non-negative.
func New(nanos *big.Int) (Instant, error) {
	if nanos == nil {
		return Instant{}, &TypeConstructionError{Arg: "nanoseconds"}
	}

	// DivMod is Euclidean; with a positive divisor that is floor division.
	q, m := new(big.Int).DivMod(nanos, bigNanosPerMilli, new(big.Int))
	if !q.IsInt64() {
		return Instant{}, fmt.Errorf("%w: %s nanoseconds", ErrOutOfRange, nanos.String())
	}

	return Instant{ms: q.Int64(), ns: m.Int64()}, nil
}

// Unix builds an Instant from a millisecond count and a nanosecond offset.
// The offset may be any value; whole milliseconds are carried into ms.
func Unix(ms, ns int64) (Instant, error) {
	return fromParts(ms, ns)
}

// fromParts is the single internal constructor. It applies the carry/borrow
// rule so that ns ends up in [0, 999999].
func fromParts(ms, ns int64) (Instant, error) {
	carry, rem := floorDivMod(ns, nanosPerMilli)

	total, ok := addInt64(ms, carry)
	if !ok {
		return Instant{}, fmt.Errorf("%w: %d ms + %d ns", ErrOutOfRange, ms, ns)
	}

	return Instant{ms: total, ns: rem}, nil
}

// Seconds returns whole seconds since the epoch, rounded toward negative infinity.
func (i Instant) Seconds() int64 {
	q, _ := floorDivMod(i.ms, millisPerSec)
	return q
}

// Milliseconds returns the stored millisecond count since the epoch.
func (i Instant) Milliseconds() int64 {
	return i.ms
}

// SubMillisecondNanoseconds returns the nanosecond remainder within the
// current millisecond, in [0, 999999].
func (i Instant) SubMillisecondNanoseconds() int64 {
	return i.ns
}

// Microseconds returns nanoseconds / 1000, truncated toward zero.
func (i Instant) Microseconds() *big.Int {
	return new(big.Int).Quo(i.Nanoseconds(), bigNanosPerMicro)
}

// Nanoseconds returns the exact nanoseconds since the epoch.
// Each call returns a fresh *big.Int.
func (i Instant) Nanoseconds() *big.Int {
	n := new(big.Int).Mul(big.NewInt(i.ms), bigNanosPerMilli)
	return n.Add(n, big.NewInt(i.ns))
}

// Time converts the Instant to a UTC time.Time.
func (i Instant) Time() time.Time {
	sec, msOfSec := floorDivMod(i.ms, millisPerSec)
	return time.Unix(sec, msOfSec*nanosPerMilli+i.ns).UTC()
}

// Compare returns -1 if i is before o, 0 if equal and +1 if after.
func (i Instant) Compare(o Instant) int {
	switch {
	case i.ms < o.ms:
		return -1
	case i.ms > o.ms:
		return 1
	case i.ns < o.ns:
		return -1
	case i.ns > o.ns:
		return 1
	default:
		return 0
	}
}

// Equal reports whether i and o denote the same nanosecond.
func (i Instant) Equal(o Instant) bool {
	return i == o
}

// Before reports whether i is strictly earlier than o.
func (i Instant) Before(o Instant) bool {
	return i.Compare(o) < 0
}

// After reports whether i is strictly later than o.
func (i Instant) After(o Instant) bool {
	return i.Compare(o) > 0
}

// ToNumber returns the millisecond count as a float64, the value an Instant
// takes in numeric contexts.
func (i Instant) ToNumber() float64 {
	return float64(i.ms)
}

// ToBigInteger returns the exact nanoseconds since the epoch.
func (i Instant) ToBigInteger() *big.Int {
	return i.Nanoseconds()
}

// ToText returns the wire form, same as String.
func (i Instant) ToText() string {
	return i.String()
}

// IsValid always reports true: every Instant, the epoch included, is a
// meaningful point in time.
func (i Instant) IsValid() bool {
	return true
}

func floorDivMod(a, b int64) (q, r int64) {
	q, r = a/b, a%b
	if r < 0 {
		r += b
		q--
	}
	return q, r
}

func addInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}
