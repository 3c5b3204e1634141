package instant

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/goinstant/internal/pkg/strpad"
)

// Layout is the time.Format layout matching String for years 0000-9999.
const Layout = "2006-01-02T15:04:05.000000000Z"

const millisLayout = "2006-01-02T15:04:05.000Z"

var wirePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})\.(\d{3})(\d{6})Z$`)

// String returns the instant as YYYY-MM-DDTHH:MM:SS.mmmnnnnnnZ.
//
// Years outside 0000-9999 are written with a sign and six digits
// (+010000-01-01T...); Parse does not accept that extended form.
func (i Instant) String() string {
	t := time.UnixMilli(i.ms).UTC()
	_, msOfSec := floorDivMod(i.ms, millisPerSec)

	var b strings.Builder
	b.Grow(len(Layout) + 3)

	writeWall(&b, t)
	b.WriteByte('.')
	b.WriteString(strpad.Zero(msOfSec, 3))
	b.WriteString(strpad.Zero(i.ns, 6))
	b.WriteByte('Z')

	return b.String()
}

// writeWall writes t's calendar date and clock time as
// YYYY-MM-DDTHH:MM:SS. Years outside 0000-9999 get a sign and six digits.
func writeWall(b *strings.Builder, t time.Time) {
	year := int64(t.Year())
	switch {
	case year < 0:
		b.WriteString(strpad.Zero(year, 6))
	case year > 9999:
		b.WriteByte('+')
		b.WriteString(strpad.Zero(year, 6))
	default:
		b.WriteString(strpad.Zero(year, 4))
	}

	b.WriteByte('-')
	b.WriteString(strpad.Zero(int64(t.Month()), 2))
	b.WriteByte('-')
	b.WriteString(strpad.Zero(int64(t.Day()), 2))
	b.WriteByte('T')
	b.WriteString(strpad.Zero(int64(t.Hour()), 2))
	b.WriteByte(':')
	b.WriteString(strpad.Zero(int64(t.Minute()), 2))
	b.WriteByte(':')
	b.WriteString(strpad.Zero(int64(t.Second()), 2))
}

// Parse reads text in the exact YYYY-MM-DDTHH:MM:SS.mmmnnnnnnZ form: four
// digit year, exactly nine fractional digits and a literal Z. Anything else,
// including a calendar-impossible date, fails with a *FormatError.
func Parse(text string) (Instant, error) {
	m := wirePattern.FindStringSubmatch(text)
	if m == nil {
		return Instant{}, &FormatError{Input: text}
	}

	// The pattern pins every field to a fixed offset, so the millisecond
	// form is the first 23 bytes plus the zone designator.
	t, err := time.Parse(millisLayout, text[:23]+"Z")
	if err != nil {
		return Instant{}, &FormatError{Input: text, Err: err}
	}

	ns, err := strconv.ParseInt(m[8], 10, 64)
	if err != nil {
		return Instant{}, &FormatError{Input: text, Err: err}
	}

	return Instant{ms: t.UnixMilli(), ns: ns}, nil
}

// MustParse is like Parse but panics on error. It is meant for constants
// and tests.
func MustParse(text string) Instant {
	i, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return i
}

func (i Instant) inWireRange() bool {
	year := time.UnixMilli(i.ms).UTC().Year()
	return year >= 0 && year <= 9999
}
