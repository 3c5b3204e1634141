package timeline

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goinstant/internal/pkg/clock"
	"github.com/shandysiswandi/goinstant/internal/pkg/config"
	"github.com/shandysiswandi/goinstant/internal/pkg/goroutine"
	"github.com/shandysiswandi/goinstant/internal/pkg/idempotency"
	"github.com/shandysiswandi/goinstant/internal/pkg/instrument"
	"github.com/shandysiswandi/goinstant/internal/pkg/router"
	"github.com/shandysiswandi/goinstant/internal/pkg/validator"
	"github.com/shandysiswandi/goinstant/internal/timeline/inbound"
	"github.com/shandysiswandi/goinstant/internal/timeline/outbound/cache"
	"github.com/shandysiswandi/goinstant/internal/timeline/outbound/db"
	"github.com/shandysiswandi/goinstant/internal/timeline/usecase"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   *redis.Client              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:      db.NewDB(dep.DBConn, dep.Instrument),
		RepoCache:   cache.NewCache(dep.CacheConn, dep.Instrument),
		Idempotency: dep.Idempotency,
		Goroutine:   dep.Goroutine,
		Validator:   dep.Validator,
		Config:      dep.Config,
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
