package inbound

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/shandysiswandi/goinstant/internal/pkg/valueobject"
	"github.com/shandysiswandi/goinstant/internal/timeline/entity"
)

type EpochRequest struct {
	Unit string `json:"unit"`
	// Value is a decimal string, or a JSON number for s and ms.
	Value json.Number `json:"value"`
}

type UTCRequest struct {
	Year        int `json:"year"`
	Month       int `json:"month"`
	Day         int `json:"day"`
	Hour        int `json:"hour"`
	Minute      int `json:"minute"`
	Second      int `json:"second"`
	Millisecond int `json:"millisecond"`
	Microsecond int `json:"microsecond"`
	Nanosecond  int `json:"nanosecond"`
}

type ZoneRequest struct {
	Instant string `json:"instant"`
	Zone    string `json:"zone"`
}

type CreateMarkRequest struct {
	Name   string            `json:"name"`
	At     string            `json:"at"`
	Labels map[string]string `json:"labels"`
}

// InstantResponse shows an instant in every unit. Microseconds and
// nanoseconds exceed the float64-safe range, so they are decimal strings.
type InstantResponse struct {
	ISO          string `json:"iso"`
	Seconds      int64  `json:"seconds"`
	Milliseconds int64  `json:"milliseconds"`
	Microseconds string `json:"microseconds"`
	Nanoseconds  string `json:"nanoseconds"`
}

func newInstantResponse(i instant.Instant) InstantResponse {
	return InstantResponse{
		ISO:          i.String(),
		Seconds:      i.Seconds(),
		Milliseconds: i.Milliseconds(),
		Microseconds: i.Microseconds().String(),
		Nanoseconds:  i.Nanoseconds().String(),
	}
}

type ZonedResponse struct {
	Instant       InstantResponse `json:"instant"`
	Zone          string          `json:"zone"`
	Local         string          `json:"local"`
	OffsetSeconds int             `json:"offset_seconds"`
}

type ReferenceResponse struct {
	Reference          InstantResponse `json:"reference"`
	Now                InstantResponse `json:"now"`
	ElapsedNanoseconds string          `json:"elapsed_nanoseconds"`
}

type MarkResponse struct {
	Name      string             `json:"name"`
	At        InstantResponse    `json:"at"`
	Labels    valueobject.Labels `json:"labels"`
	CreatedAt time.Time          `json:"created_at"`
}

func newMarkResponse(m entity.Mark) MarkResponse {
	labels := m.Labels
	if labels == nil {
		labels = valueobject.Labels{}
	}
	return MarkResponse{
		Name:      m.Name,
		At:        newInstantResponse(m.At),
		Labels:    labels,
		CreatedAt: m.CreatedAt,
	}
}

type MarkCreatedResponse struct {
	MarkResponse
}

func (MarkCreatedResponse) StatusCode() int { return http.StatusCreated }

func (MarkCreatedResponse) Message() string { return "mark has been created" }

type MarksResponse struct {
	Marks []MarkResponse `json:"marks"`

	total  int64
	limit  int32
	offset int32
}

func (r MarksResponse) Meta() map[string]any {
	return map[string]any{
		"total":  r.total,
		"limit":  r.limit,
		"offset": r.offset,
	}
}
