package usecase

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/shandysiswandi/goinstant/internal/pkg/goerror"
	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
)

const referenceKey = "timeline.reference_instant"

type ReferenceOutput struct {
	Reference instant.Instant
	Now       instant.Instant
	// Elapsed is Now minus Reference in nanoseconds; negative when the
	// reference lies in the future.
	Elapsed *big.Int
}

func (s *Usecase) Reference(ctx context.Context) (*ReferenceOutput, error) {
	ctx, span := s.startSpan(ctx, "Reference")
	defer span.End()

	ref, err := s.cfg.GetInstant(referenceKey)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read reference instant", "key", referenceKey, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Instant()

	return &ReferenceOutput{
		Reference: ref,
		Now:       now,
		Elapsed:   new(big.Int).Sub(now.Nanoseconds(), ref.Nanoseconds()),
	}, nil
}
