package entity

import "strings"

// EpochUnit is the unit of an epoch count accepted by the epoch conversion.
type EpochUnit string

const (
	UnitSeconds      EpochUnit = "s"
	UnitMilliseconds EpochUnit = "ms"
	UnitMicroseconds EpochUnit = "us"
	UnitNanoseconds  EpochUnit = "ns"
)

// ParseEpochUnit normalizes a unit name; the bool is false for unknown units.
func ParseEpochUnit(s string) (EpochUnit, bool) {
	switch u := EpochUnit(strings.ToLower(strings.TrimSpace(s))); u {
	case UnitSeconds, UnitMilliseconds, UnitMicroseconds, UnitNanoseconds:
		return u, true
	default:
		return "", false
	}
}

func (u EpochUnit) String() string {
	return string(u)
}
