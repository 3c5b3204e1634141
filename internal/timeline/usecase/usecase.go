package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shandysiswandi/goinstant/internal/pkg/clock"
	"github.com/shandysiswandi/goinstant/internal/pkg/config"
	"github.com/shandysiswandi/goinstant/internal/pkg/goerror"
	"github.com/shandysiswandi/goinstant/internal/pkg/goroutine"
	"github.com/shandysiswandi/goinstant/internal/pkg/idempotency"
	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/shandysiswandi/goinstant/internal/pkg/instrument"
	"github.com/shandysiswandi/goinstant/internal/pkg/numeric"
	"github.com/shandysiswandi/goinstant/internal/pkg/validator"
	"github.com/shandysiswandi/goinstant/internal/timeline/entity"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	defaultCacheTTL  = 5 * time.Minute
)

type repoDB interface {
	CreateMark(ctx context.Context, m entity.Mark) error
	GetMark(ctx context.Context, name string) (*entity.Mark, error)
	ListMarks(ctx context.Context, limit, offset int32) ([]entity.Mark, error)
	CountMarks(ctx context.Context) (int64, error)
	DeleteMark(ctx context.Context, name string) (bool, error)
}

// repoCache returns goerror.ErrNotFound on a miss.
type repoCache interface {
	GetMark(ctx context.Context, name string) (*entity.Mark, error)
	SetMark(ctx context.Context, m entity.Mark, ttl time.Duration) error
	DeleteMark(ctx context.Context, name string) error
}

type Dependency struct {
	RepoDB      repoDB
	RepoCache   repoCache
	Idempotency idempotency.Idempotency
	Goroutine   *goroutine.Manager
	Validator   validator.Validator
	Config      config.Config
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

type Usecase struct {
	repoDB    repoDB
	repoCache repoCache
	idemp     idempotency.Idempotency
	goroutine *goroutine.Manager
	validator validator.Validator
	cfg       config.Config
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		repoCache: dep.RepoCache,
		idemp:     dep.Idempotency,
		goroutine: dep.Goroutine,
		validator: dep.Validator,
		cfg:       dep.Config,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("timeline.usecase").Start(ctx, name)
}

func (s *Usecase) cacheTTL() time.Duration {
	if ttl := s.cfg.GetSecond("timeline.cache.ttl_seconds"); ttl > 0 {
		return ttl
	}
	return defaultCacheTTL
}

// mapInstantError turns construction and parse failures into client errors
// keyed by the offending input field.
func mapInstantError(field string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, instant.ErrOutOfRange):
		return goerror.NewOutOfRange(err, "Instant is outside the representable range")
	case errors.Is(err, instant.ErrFormat),
		errors.Is(err, instant.ErrTypeConstruction),
		errors.Is(err, instant.ErrTooManyFields),
		errors.Is(err, numeric.ErrNotNumeric),
		errors.Is(err, numeric.ErrNotFinite):
		return goerror.NewInvalidInput(nil, field, err.Error())
	default:
		return goerror.NewServer(err)
	}
}
