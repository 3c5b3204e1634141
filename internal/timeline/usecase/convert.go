package usecase

import (
	"context"
	"log/slog"
	"math/big"
	"strings"

	"github.com/shandysiswandi/goinstant/internal/pkg/goerror"
	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/shandysiswandi/goinstant/internal/timeline/entity"
)

type (
	ParseInput struct {
		Value string `validate:"required"`
	}

	EpochInput struct {
		Unit  string `validate:"required"`
		Value string `validate:"required"`
	}

	UTCInput struct {
		Year        int
		Month       int
		Day         int
		Hour        int
		Minute      int
		Second      int
		Millisecond int
		Microsecond int
		Nanosecond  int
	}

	ZoneInput struct {
		Instant string `validate:"required,instant"`
		Zone    string `validate:"required,iana_zone"`
	}
)

// Now reports the current instant from the service clock.
func (s *Usecase) Now(ctx context.Context) instant.Instant {
	_, span := s.startSpan(ctx, "Now")
	defer span.End()

	return s.clock.Instant()
}

// Parse reads a wire-format timestamp.
func (s *Usecase) Parse(ctx context.Context, in ParseInput) (instant.Instant, error) {
	_, span := s.startSpan(ctx, "Parse")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return instant.Instant{}, goerror.NewInvalidInput(err)
	}

	i, err := instant.Parse(in.Value)
	if err != nil {
		return instant.Instant{}, mapInstantError("value", err)
	}

	return i, nil
}

// FromEpoch converts an epoch count in the given unit. Seconds and
// milliseconds accept decimals; micro and nanoseconds must be exact integers.
func (s *Usecase) FromEpoch(ctx context.Context, in EpochInput) (instant.Instant, error) {
	ctx, span := s.startSpan(ctx, "FromEpoch")
	defer span.End()

	in.Value = strings.TrimSpace(in.Value)
	if err := s.validator.Validate(in); err != nil {
		return instant.Instant{}, goerror.NewInvalidInput(err)
	}

	unit, ok := entity.ParseEpochUnit(in.Unit)
	if !ok {
		return instant.Instant{}, goerror.NewInvalidInput(nil, "unit", "must be one of s, ms, us, ns")
	}

	var (
		i   instant.Instant
		err error
	)
	switch unit {
	case entity.UnitSeconds:
		i, err = instant.FromEpochSeconds(in.Value)
	case entity.UnitMilliseconds:
		i, err = instant.FromEpochMilliseconds(in.Value)
	default:
		n, ok := new(big.Int).SetString(in.Value, 10)
		if !ok {
			return instant.Instant{}, goerror.NewInvalidInput(nil, "value", "must be an integer")
		}
		if unit == entity.UnitMicroseconds {
			i, err = instant.FromEpochMicroseconds(n)
		} else {
			i, err = instant.FromEpochNanoseconds(n)
		}
	}
	if err != nil {
		slog.DebugContext(ctx, "epoch conversion rejected", "unit", unit, "value", in.Value, "error", err)
		return instant.Instant{}, mapInstantError("value", err)
	}

	return i, nil
}

// FromUTC builds an instant from calendar fields, rolling over out-of-range
// values the way the calendar does.
func (s *Usecase) FromUTC(ctx context.Context, in UTCInput) (instant.Instant, error) {
	_, span := s.startSpan(ctx, "FromUTC")
	defer span.End()

	i, err := instant.FromUTC(in.Year, in.Month, in.Day, in.Hour, in.Minute,
		in.Second, in.Millisecond, in.Microsecond, in.Nanosecond)
	if err != nil {
		return instant.Instant{}, mapInstantError("fields", err)
	}

	return i, nil
}

// Zone projects an instant into an IANA time zone.
func (s *Usecase) Zone(ctx context.Context, in ZoneInput) (instant.ZonedDateTime, error) {
	_, span := s.startSpan(ctx, "Zone")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return instant.ZonedDateTime{}, goerror.NewInvalidInput(err)
	}

	i, err := instant.Parse(in.Instant)
	if err != nil {
		return instant.ZonedDateTime{}, mapInstantError("instant", err)
	}

	z, err := i.WithZoneName(in.Zone)
	if err != nil {
		return instant.ZonedDateTime{}, goerror.NewInvalidInput(nil, "zone", err.Error())
	}

	return z, nil
}
