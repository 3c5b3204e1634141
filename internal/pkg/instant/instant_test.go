package instant

import (
	"errors"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/shandysiswandi/goinstant/internal/pkg/numeric"
	"pgregory.net/rapid"
)

func bigInt(t testing.TB, s string) *big.Int {
	t.Helper()

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("invalid big integer literal %q", s)
	}
	return n
}

func mustNanos(t testing.TB, s string) Instant {
	t.Helper()

	i, err := FromEpochNanoseconds(bigInt(t, s))
	if err != nil {
		t.Fatalf("FromEpochNanoseconds(%s): %v", s, err)
	}
	return i
}

func TestNew(t *testing.T) {
	t.Run("SplitsPositive", func(t *testing.T) {
		// Act
		i := mustNanos(t, "1577836800123456789")

		// Assert
		if i.Milliseconds() != 1577836800123 || i.SubMillisecondNanoseconds() != 456789 {
			t.Fatalf("got (%d, %d), want (1577836800123, 456789)", i.Milliseconds(), i.SubMillisecondNanoseconds())
		}
	})

	t.Run("FloorsNegative", func(t *testing.T) {
		// Act
		i := mustNanos(t, "-1")

		// Assert
		if i.Milliseconds() != -1 || i.SubMillisecondNanoseconds() != 999_999 {
			t.Fatalf("got (%d, %d), want (-1, 999999)", i.Milliseconds(), i.SubMillisecondNanoseconds())
		}
	})

	t.Run("ExactNegativeMillisecond", func(t *testing.T) {
		i := mustNanos(t, "-2000000")

		if i.Milliseconds() != -2 || i.SubMillisecondNanoseconds() != 0 {
			t.Fatalf("got (%d, %d), want (-2, 0)", i.Milliseconds(), i.SubMillisecondNanoseconds())
		}
	})

	t.Run("NilIsTypeConstructionError", func(t *testing.T) {
		// Act
		_, err := New(nil)

		// Assert
		if !errors.Is(err, ErrTypeConstruction) {
			t.Fatalf("expected ErrTypeConstruction, got %v", err)
		}
		var tce *TypeConstructionError
		if !errors.As(err, &tce) || tce.Arg != "nanoseconds" {
			t.Fatalf("expected *TypeConstructionError for nanoseconds, got %#v", err)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		// Arrange
		n := new(big.Int).Lsh(big.NewInt(1), 63)
		n.Mul(n, big.NewInt(nanosPerMilli))

		// Act
		_, err := New(n)

		// Assert
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange, got %v", err)
		}
	})

	t.Run("DoesNotAliasInput", func(t *testing.T) {
		// Arrange
		n := big.NewInt(5_000_001)
		i, err := New(n)
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		// Act
		n.SetInt64(0)

		// Assert
		if i.Nanoseconds().Int64() != 5_000_001 {
			t.Fatalf("instant changed after mutating input: %s", i.Nanoseconds())
		}
	})
}

func TestUnix(t *testing.T) {
	tests := []struct {
		name   string
		ms, ns int64
		wantMs int64
		wantNs int64
	}{
		{name: "InRange", ms: 10, ns: 5, wantMs: 10, wantNs: 5},
		{name: "Borrow", ms: 0, ns: -1, wantMs: -1, wantNs: 999_999},
		{name: "CarryExactBoundary", ms: 0, ns: 1_000_000, wantMs: 1, wantNs: 0},
		{name: "CarryMany", ms: 7, ns: 3_000_000_123, wantMs: 3007, wantNs: 123},
		{name: "BorrowMany", ms: 0, ns: -2_000_001, wantMs: -3, wantNs: 999_999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, err := Unix(tt.ms, tt.ns)
			if err != nil {
				t.Fatalf("Unix: %v", err)
			}
			if i.Milliseconds() != tt.wantMs || i.SubMillisecondNanoseconds() != tt.wantNs {
				t.Fatalf("got (%d, %d), want (%d, %d)", i.Milliseconds(), i.SubMillisecondNanoseconds(), tt.wantMs, tt.wantNs)
			}
		})
	}

	t.Run("Overflow", func(t *testing.T) {
		if _, err := Unix(math.MaxInt64, nanosPerMilli); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange, got %v", err)
		}
		if _, err := Unix(math.MinInt64, -1); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange, got %v", err)
		}
	})
}

func TestFromUTC(t *testing.T) {
	epoch2020 := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	t.Run("BorrowsOneNanosecond", func(t *testing.T) {
		// Act
		i, err := FromUTC(2020, 1, 1, 0, 0, 0, 0, 0, -1)

		// Assert
		if err != nil {
			t.Fatalf("FromUTC: %v", err)
		}
		if i.Milliseconds() != epoch2020-1 {
			t.Fatalf("milliseconds = %d, want %d", i.Milliseconds(), epoch2020-1)
		}
		if i.SubMillisecondNanoseconds() != 999_999 {
			t.Fatalf("remainder = %d, want 999999", i.SubMillisecondNanoseconds())
		}
	})

	t.Run("CarriesExactlyOneMillisecond", func(t *testing.T) {
		// A remainder of exactly 1_000_000 must not survive normalization.
		i, err := FromUTC(2020, 1, 1, 0, 0, 0, 0, 0, 1_000_000)
		if err != nil {
			t.Fatalf("FromUTC: %v", err)
		}
		if i.Milliseconds() != epoch2020+1 || i.SubMillisecondNanoseconds() != 0 {
			t.Fatalf("got (%d, %d), want (%d, 0)", i.Milliseconds(), i.SubMillisecondNanoseconds(), epoch2020+1)
		}
	})

	t.Run("CarriesMicroseconds", func(t *testing.T) {
		i, err := FromUTC(2020, 1, 1, 0, 0, 0, 0, 1000, 0)
		if err != nil {
			t.Fatalf("FromUTC: %v", err)
		}
		if i.Milliseconds() != epoch2020+1 || i.SubMillisecondNanoseconds() != 0 {
			t.Fatalf("got (%d, %d), want (%d, 0)", i.Milliseconds(), i.SubMillisecondNanoseconds(), epoch2020+1)
		}
	})

	t.Run("HugeNanosecondsKeepExactTotal", func(t *testing.T) {
		for _, ns := range []int{math.MaxInt64, math.MinInt64} {
			// Arrange
			want := new(big.Int).Mul(big.NewInt(epoch2020), big.NewInt(nanosPerMilli))
			want.Add(want, big.NewInt(int64(ns)))

			// Act
			i, err := FromUTC(2020, 1, 1, 0, 0, 0, 0, 999, ns)

			// Assert
			if err != nil {
				t.Fatalf("FromUTC(ns=%d): %v", ns, err)
			}
			want.Add(want, big.NewInt(999*nanosPerMicro))
			if got := i.Nanoseconds(); got.Cmp(want) != 0 {
				t.Fatalf("FromUTC(ns=%d) = %s ns, want %s", ns, got, want)
			}
		}
	})

	t.Run("NanosecondCarryPastRange", func(t *testing.T) {
		_, err := FromUTC(1970, 1, 1, 0, 0, 0, math.MaxInt64-1, 0, 2*nanosPerMilli)
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("err = %v, want ErrOutOfRange", err)
		}
	})

	t.Run("AllFields", func(t *testing.T) {
		i, err := FromUTC(2020, 1, 1, 0, 0, 0, 123, 456, 789)
		if err != nil {
			t.Fatalf("FromUTC: %v", err)
		}
		if got := i.String(); got != "2020-01-01T00:00:00.123456789Z" {
			t.Fatalf("String() = %q", got)
		}
	})

	t.Run("OptionalFieldsDefaultToZero", func(t *testing.T) {
		i, err := FromUTC(2020, 1, 1, 0, 0)
		if err != nil {
			t.Fatalf("FromUTC: %v", err)
		}
		if i.Milliseconds() != epoch2020 || i.SubMillisecondNanoseconds() != 0 {
			t.Fatalf("got (%d, %d), want (%d, 0)", i.Milliseconds(), i.SubMillisecondNanoseconds(), epoch2020)
		}
	})

	t.Run("MonthRollsOver", func(t *testing.T) {
		a, err := FromUTC(2019, 13, 1, 0, 0)
		if err != nil {
			t.Fatalf("FromUTC: %v", err)
		}
		b, err := FromUTC(2020, 1, 1, 0, 0)
		if err != nil {
			t.Fatalf("FromUTC: %v", err)
		}
		if !a.Equal(b) {
			t.Fatalf("%s != %s", a, b)
		}
	})

	t.Run("TooManyFields", func(t *testing.T) {
		if _, err := FromUTC(2020, 1, 1, 0, 0, 0, 0, 0, 0, 0); !errors.Is(err, ErrTooManyFields) {
			t.Fatalf("expected ErrTooManyFields, got %v", err)
		}
	})
}

func TestFromEpoch(t *testing.T) {
	t.Run("SecondsFromString", func(t *testing.T) {
		i, err := FromEpochSeconds("1577836800")
		if err != nil {
			t.Fatalf("FromEpochSeconds: %v", err)
		}
		if i.Milliseconds() != 1577836800000 || i.SubMillisecondNanoseconds() != 0 {
			t.Fatalf("got (%d, %d)", i.Milliseconds(), i.SubMillisecondNanoseconds())
		}
	})

	t.Run("SecondsFraction", func(t *testing.T) {
		i, err := FromEpochSeconds(1.5)
		if err != nil {
			t.Fatalf("FromEpochSeconds: %v", err)
		}
		if i.Milliseconds() != 1500 {
			t.Fatalf("milliseconds = %d, want 1500", i.Milliseconds())
		}
	})

	t.Run("MillisecondsInt", func(t *testing.T) {
		i, err := FromEpochMilliseconds(int64(-86_400_000))
		if err != nil {
			t.Fatalf("FromEpochMilliseconds: %v", err)
		}
		if i.Seconds() != -86_400 {
			t.Fatalf("seconds = %d, want -86400", i.Seconds())
		}
	})

	t.Run("MillisecondsFractionFloors", func(t *testing.T) {
		i, err := FromEpochMilliseconds(-1.5)
		if err != nil {
			t.Fatalf("FromEpochMilliseconds: %v", err)
		}
		if i.Milliseconds() != -2 || i.SubMillisecondNanoseconds() != 0 {
			t.Fatalf("got (%d, %d), want (-2, 0)", i.Milliseconds(), i.SubMillisecondNanoseconds())
		}
	})

	t.Run("CoercionErrorPropagates", func(t *testing.T) {
		if _, err := FromEpochMilliseconds("soon"); !errors.Is(err, numeric.ErrNotNumeric) {
			t.Fatalf("expected numeric.ErrNotNumeric, got %v", err)
		}
		if _, err := FromEpochSeconds("Inf"); !errors.Is(err, numeric.ErrNotFinite) {
			t.Fatalf("expected numeric.ErrNotFinite, got %v", err)
		}
	})

	t.Run("MillisecondsOutOfRange", func(t *testing.T) {
		if _, err := FromEpochMilliseconds(1e19); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("expected ErrOutOfRange, got %v", err)
		}
	})

	t.Run("Microseconds", func(t *testing.T) {
		// Act
		i, err := FromEpochMicroseconds(big.NewInt(1234567))

		// Assert
		if err != nil {
			t.Fatalf("FromEpochMicroseconds: %v", err)
		}
		if i.Microseconds().Cmp(big.NewInt(1234567)) != 0 {
			t.Fatalf("microseconds = %s, want 1234567", i.Microseconds())
		}
		if i.Milliseconds() != 1234 {
			t.Fatalf("milliseconds = %d, want 1234", i.Milliseconds())
		}
	})

	t.Run("MicrosecondsNil", func(t *testing.T) {
		_, err := FromEpochMicroseconds(nil)
		var tce *TypeConstructionError
		if !errors.As(err, &tce) || tce.Arg != "microseconds" {
			t.Fatalf("expected *TypeConstructionError for microseconds, got %v", err)
		}
	})
}

func TestAccessors(t *testing.T) {
	t.Run("SecondsFloor", func(t *testing.T) {
		tests := []struct {
			ms   int64
			want int64
		}{
			{ms: 0, want: 0},
			{ms: 999, want: 0},
			{ms: 1000, want: 1},
			{ms: -1, want: -1},
			{ms: -1000, want: -1},
			{ms: -1001, want: -2},
		}
		for _, tt := range tests {
			i, err := Unix(tt.ms, 0)
			if err != nil {
				t.Fatalf("Unix: %v", err)
			}
			if got := i.Seconds(); got != tt.want {
				t.Fatalf("Seconds() for %d ms = %d, want %d", tt.ms, got, tt.want)
			}
		}
	})

	t.Run("MicrosecondsTruncateTowardZero", func(t *testing.T) {
		i := mustNanos(t, "-1500")

		if got := i.Microseconds(); got.Cmp(big.NewInt(-1)) != 0 {
			t.Fatalf("Microseconds() = %s, want -1", got)
		}
		if i.Milliseconds() != -1 || i.SubMillisecondNanoseconds() != 998_500 {
			t.Fatalf("got (%d, %d), want (-1, 998500)", i.Milliseconds(), i.SubMillisecondNanoseconds())
		}
	})

	t.Run("NanosecondsFresh", func(t *testing.T) {
		i := mustNanos(t, "42")

		n := i.Nanoseconds()
		n.SetInt64(7)

		if i.Nanoseconds().Int64() != 42 {
			t.Fatalf("Nanoseconds() result aliases internal state")
		}
	})

	t.Run("Conversions", func(t *testing.T) {
		i := mustNanos(t, "1577836800123456789")

		if i.ToNumber() != 1577836800123 {
			t.Fatalf("ToNumber() = %v", i.ToNumber())
		}
		if i.ToBigInteger().Cmp(bigInt(t, "1577836800123456789")) != 0 {
			t.Fatalf("ToBigInteger() = %s", i.ToBigInteger())
		}
		if i.ToText() != i.String() {
			t.Fatalf("ToText() = %q, want %q", i.ToText(), i.String())
		}
	})

	t.Run("EpochIsValid", func(t *testing.T) {
		i := mustNanos(t, "0")

		if !i.IsValid() {
			t.Fatalf("epoch instant must be valid")
		}
		if !(Instant{}).IsValid() {
			t.Fatalf("zero value must be valid")
		}
	})
}

func TestTimeBridge(t *testing.T) {
	t.Run("FromTime", func(t *testing.T) {
		i, err := FromTime(time.Date(2020, time.January, 1, 7, 0, 0, 123456789, time.FixedZone("WIB", 7*3600)))
		if err != nil {
			t.Fatalf("FromTime: %v", err)
		}
		if got := i.String(); got != "2020-01-01T00:00:00.123456789Z" {
			t.Fatalf("String() = %q", got)
		}
	})

	t.Run("FromTimeBeforeEpoch", func(t *testing.T) {
		i, err := FromTime(time.Unix(-1, 5))
		if err != nil {
			t.Fatalf("FromTime: %v", err)
		}
		if i.Nanoseconds().Cmp(big.NewInt(-999_999_995)) != 0 {
			t.Fatalf("Nanoseconds() = %s, want -999999995", i.Nanoseconds())
		}
	})

	t.Run("TimeRoundTrip", func(t *testing.T) {
		i := mustNanos(t, "-1")

		got, err := FromTime(i.Time())
		if err != nil {
			t.Fatalf("FromTime: %v", err)
		}
		if !got.Equal(i) {
			t.Fatalf("round trip %s != %s", got, i)
		}
		if i.Time().Location() != time.UTC {
			t.Fatalf("Time() must be UTC")
		}
	})
}

func TestCompare(t *testing.T) {
	a := mustNanos(t, "1000000")
	b := mustNanos(t, "1000001")
	c := mustNanos(t, "2000000")

	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatalf("Compare on sub-millisecond difference is wrong")
	}
	if !b.Before(c) || !c.After(b) || c.Before(b) {
		t.Fatalf("Before/After on millisecond difference is wrong")
	}
	if !a.Equal(mustNanos(t, "1000000")) || a.Equal(b) {
		t.Fatalf("Equal is wrong")
	}
}

func TestProperty_NanosecondRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		// Arrange
		hi := rapid.Int64Range(math.MinInt64/2, math.MaxInt64/2).Draw(t, "hi")
		lo := rapid.Int64Range(-1_000_000_000_000, 1_000_000_000_000).Draw(t, "lo")
		n := new(big.Int).Mul(big.NewInt(hi), bigNanosPerMilli)
		n.Add(n, big.NewInt(lo))

		// Act
		i, err := FromEpochNanoseconds(n)

		// Assert
		if err != nil {
			t.Fatalf("FromEpochNanoseconds(%s): %v", n, err)
		}
		if i.Nanoseconds().Cmp(n) != 0 {
			t.Fatalf("Nanoseconds() = %s, want %s", i.Nanoseconds(), n)
		}
		if r := i.SubMillisecondNanoseconds(); r < 0 || r >= nanosPerMilli {
			t.Fatalf("remainder %d outside [0, 999999]", r)
		}
	})
}

func TestProperty_NormalizationKeepsTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ms := rapid.Int64Range(-1<<50, 1<<50).Draw(t, "ms")
		ns := rapid.Int64Range(-1<<40, 1<<40).Draw(t, "ns")

		i, err := Unix(ms, ns)
		if err != nil {
			t.Fatalf("Unix(%d, %d): %v", ms, ns, err)
		}

		want := new(big.Int).Mul(big.NewInt(ms), bigNanosPerMilli)
		want.Add(want, big.NewInt(ns))
		if i.Nanoseconds().Cmp(want) != 0 {
			t.Fatalf("Nanoseconds() = %s, want %s", i.Nanoseconds(), want)
		}
	})
}
