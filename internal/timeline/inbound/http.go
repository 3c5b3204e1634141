package inbound

import (
	"context"

	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/shandysiswandi/goinstant/internal/pkg/router"
	"github.com/shandysiswandi/goinstant/internal/timeline/entity"
	"github.com/shandysiswandi/goinstant/internal/timeline/usecase"
)

type uc interface {
	Now(ctx context.Context) instant.Instant
	Parse(ctx context.Context, in usecase.ParseInput) (instant.Instant, error)
	FromEpoch(ctx context.Context, in usecase.EpochInput) (instant.Instant, error)
	FromUTC(ctx context.Context, in usecase.UTCInput) (instant.Instant, error)
	Zone(ctx context.Context, in usecase.ZoneInput) (instant.ZonedDateTime, error)
	Reference(ctx context.Context) (*usecase.ReferenceOutput, error)

	CreateMark(ctx context.Context, in usecase.CreateMarkInput) (*entity.Mark, error)
	GetMark(ctx context.Context, name string) (*entity.Mark, error)
	ListMarks(ctx context.Context, in usecase.ListMarksInput) (*usecase.ListMarksOutput, error)
	DeleteMark(ctx context.Context, name string) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.GET("/api/v1/timeline/now", end.Now)
	r.GET("/api/v1/timeline/parse", end.Parse)
	r.POST("/api/v1/timeline/epoch", end.FromEpoch)
	r.POST("/api/v1/timeline/utc", end.FromUTC)
	r.POST("/api/v1/timeline/zone", end.Zone)
	r.GET("/api/v1/timeline/reference", end.Reference)

	r.POST("/api/v1/timeline/marks", end.CreateMark)
	r.GET("/api/v1/timeline/marks", end.ListMarks)
	r.GET("/api/v1/timeline/marks/:name", end.GetMark)
	r.DELETE("/api/v1/timeline/marks/:name", end.DeleteMark)
}
