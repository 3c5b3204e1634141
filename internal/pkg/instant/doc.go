// Package instant implements Instant, an immutable nanosecond-precision point
// on the UTC timeline.
//
// An Instant stores a signed millisecond count since the Unix epoch plus a
// sub-millisecond remainder in [0, 999999] nanoseconds, so the exact
// nanosecond value is always recoverable as a *big.Int. Text form is the
// extended ISO-8601 layout with nine fractional digits:
//
//	2020-01-01T00:00:00.123456789Z
//
// Instants are plain values. They hold no references, never mutate after
// construction and are safe for concurrent use.
package instant
