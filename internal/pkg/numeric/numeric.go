// Package numeric coerces loosely typed time-unit input (strings, numbers)
// into finite float64 values.
package numeric

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var (
	// ErrNotNumeric indicates the input is neither a number nor a numeric string.
	ErrNotNumeric = errors.New("numeric: value is not numeric")

	// ErrNotFinite indicates the input parsed to NaN or an infinity.
	ErrNotFinite = errors.New("numeric: value is not finite")
)

// Number converts v into a finite float64.
//
// Accepted inputs are Go integer and float kinds, json.Number and strings
// holding a decimal or scientific literal. Booleans, nil and every other type
// are rejected with ErrNotNumeric.
func Number(v any) (float64, error) {
	var (
		f   float64
		err error
	)

	switch val := v.(type) {
	case nil, bool:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, v)
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, fmt.Errorf("%w: empty string", ErrNotNumeric)
		}
		// strconv keeps exponent and NaN/Inf literals visible to the finite check.
		f, err = strconv.ParseFloat(s, 64)
	case json.Number:
		f, err = val.Float64()
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		f, err = cast.ToFloat64E(val)
	default:
		return 0, fmt.Errorf("%w: %T", ErrNotNumeric, v)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, fmt.Sprint(v))
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v", ErrNotFinite, v)
	}

	return f, nil
}
