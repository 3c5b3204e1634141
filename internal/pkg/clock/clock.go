package clock

import (
	"time"

	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
)

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
	Instant() instant.Instant
}

// TimeClocker is the production clock implementation backed by time.Now.
type TimeClocker struct{}

// New returns a TimeClocker that reads the current system time.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// Instant returns the current system time as a nanosecond-precision Instant.
func (c *TimeClocker) Instant() instant.Instant {
	return fromTime(c.Now())
}

// Fixed is a Clocker frozen at a single point in time.
type Fixed struct {
	at time.Time
}

// NewFixed returns a clock that always reports at.
func NewFixed(at time.Time) *Fixed {
	return &Fixed{at: at}
}

// Now returns the frozen time.
func (f *Fixed) Now() time.Time {
	return f.at
}

// Instant returns the frozen time as an Instant.
func (f *Fixed) Instant() instant.Instant {
	return fromTime(f.at)
}

func fromTime(t time.Time) instant.Instant {
	//nolint:errcheck // wall clock readings are far inside the int64 millisecond range
	i, _ := instant.FromTime(t)
	return i
}
