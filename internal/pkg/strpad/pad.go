// Package strpad formats integers as fixed-width decimal strings.
package strpad

import (
	"strconv"
	"strings"
)

// Zero formats n in base 10, left-padded with zeros to at least width digits.
// A negative n keeps its sign in front of the padded magnitude.
func Zero(n int64, width int) string {
	if n < 0 {
		// -MinInt64 overflows, so pad the unsigned magnitude.
		return "-" + pad(strconv.FormatUint(uint64(-(n+1))+1, 10), width)
	}
	return pad(strconv.FormatInt(n, 10), width)
}

func pad(digits string, width int) string {
	if len(digits) >= width {
		return digits
	}
	return strings.Repeat("0", width-len(digits)) + digits
}
