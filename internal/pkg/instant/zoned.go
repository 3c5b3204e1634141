package instant

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve without a system zoneinfo

	"github.com/shandysiswandi/goinstant/internal/pkg/strpad"
)

// ZonedDateTime pairs an Instant with a time zone for wall-clock display.
// Offsets come from the zone database embedded via time/tzdata.
type ZonedDateTime struct {
	instant Instant
	loc     *time.Location
}

// WithZone returns the instant viewed in loc. A nil loc means UTC.
func (i Instant) WithZone(loc *time.Location) ZonedDateTime {
	return ZonedDateTime{instant: i, loc: loc}
}

// WithZoneName is WithZone for an IANA zone name such as "Asia/Jakarta".
func (i Instant) WithZoneName(name string) (ZonedDateTime, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return ZonedDateTime{}, fmt.Errorf("instant: load zone %q: %w", name, err)
	}
	return i.WithZone(loc), nil
}

// Instant returns the underlying point in time.
func (z ZonedDateTime) Instant() Instant {
	return z.instant
}

// Zone returns the zone, never nil.
func (z ZonedDateTime) Zone() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// Time returns the wall-clock time in the zone.
func (z ZonedDateTime) Time() time.Time {
	return z.instant.Time().In(z.Zone())
}

// String formats as 2006-01-02T15:04:05.000000000-07:00[Zone]. Years
// outside 0000-9999 use the same signed six-digit form as Instant.String.
func (z ZonedDateTime) String() string {
	t := z.Time()
	_, msOfSec := floorDivMod(z.instant.ms, millisPerSec)

	var b strings.Builder
	writeWall(&b, t)
	b.WriteByte('.')
	b.WriteString(strpad.Zero(msOfSec, 3))
	b.WriteString(strpad.Zero(z.instant.ns, 6))
	b.WriteString(t.Format("-07:00"))
	b.WriteByte('[')
	b.WriteString(z.Zone().String())
	b.WriteByte(']')

	return b.String()
}

// MarshalJSON encodes the zoned form as a JSON string.
func (z ZonedDateTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(z.String())), nil
}
