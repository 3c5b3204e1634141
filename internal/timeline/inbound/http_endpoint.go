package inbound

import (
	"github.com/shandysiswandi/goinstant/internal/pkg/router"
	"github.com/shandysiswandi/goinstant/internal/timeline/usecase"
)

// HeaderIdempotencyKey makes mark creation safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

type HTTPEndpoint struct {
	uc uc
}

// Now returns the server's current instant.
// @Summary Current instant
// @Tags Timeline
// @Produce json
// @Success 200 {object} router.successResponse{data=InstantResponse}
// @Router /api/v1/timeline/now [get]
func (h *HTTPEndpoint) Now(r *router.Request) (any, error) {
	return newInstantResponse(h.uc.Now(r.Context())), nil
}

// Parse reads ?value= in the nine-digit wire form.
// @Summary Parse instant
// @Tags Timeline
// @Produce json
// @Param value query string true "2006-01-02T15:04:05.000000000Z"
// @Success 200 {object} router.successResponse{data=InstantResponse}
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/timeline/parse [get]
func (h *HTTPEndpoint) Parse(r *router.Request) (any, error) {
	i, err := h.uc.Parse(r.Context(), usecase.ParseInput{Value: r.GetQuery("value")})
	if err != nil {
		return nil, err
	}

	return newInstantResponse(i), nil
}

// FromEpoch converts an epoch count.
// @Summary Instant from epoch count
// @Tags Timeline
// @Accept json
// @Produce json
// @Param request body EpochRequest true "unit is one of s, ms, us, ns"
// @Success 200 {object} router.successResponse{data=InstantResponse}
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/timeline/epoch [post]
func (h *HTTPEndpoint) FromEpoch(r *router.Request) (any, error) {
	var req EpochRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	i, err := h.uc.FromEpoch(r.Context(), usecase.EpochInput{Unit: req.Unit, Value: req.Value.String()})
	if err != nil {
		return nil, err
	}

	return newInstantResponse(i), nil
}

// FromUTC builds an instant from calendar fields.
// @Summary Instant from UTC fields
// @Tags Timeline
// @Accept json
// @Produce json
// @Param request body UTCRequest true "calendar fields"
// @Success 200 {object} router.successResponse{data=InstantResponse}
// @Router /api/v1/timeline/utc [post]
func (h *HTTPEndpoint) FromUTC(r *router.Request) (any, error) {
	var req UTCRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	i, err := h.uc.FromUTC(r.Context(), usecase.UTCInput(req))
	if err != nil {
		return nil, err
	}

	return newInstantResponse(i), nil
}

// Zone projects an instant into a time zone.
// @Summary Zoned view of an instant
// @Tags Timeline
// @Accept json
// @Produce json
// @Param request body ZoneRequest true "instant and IANA zone"
// @Success 200 {object} router.successResponse{data=ZonedResponse}
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/timeline/zone [post]
func (h *HTTPEndpoint) Zone(r *router.Request) (any, error) {
	var req ZoneRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	z, err := h.uc.Zone(r.Context(), usecase.ZoneInput{Instant: req.Instant, Zone: req.Zone})
	if err != nil {
		return nil, err
	}

	_, offset := z.Time().Zone()

	return ZonedResponse{
		Instant:       newInstantResponse(z.Instant()),
		Zone:          z.Zone().String(),
		Local:         z.String(),
		OffsetSeconds: offset,
	}, nil
}

// Reference reports the configured reference instant and the time elapsed since it.
// @Summary Elapsed since reference
// @Tags Timeline
// @Produce json
// @Success 200 {object} router.successResponse{data=ReferenceResponse}
// @Router /api/v1/timeline/reference [get]
func (h *HTTPEndpoint) Reference(r *router.Request) (any, error) {
	out, err := h.uc.Reference(r.Context())
	if err != nil {
		return nil, err
	}

	return ReferenceResponse{
		Reference:          newInstantResponse(out.Reference),
		Now:                newInstantResponse(out.Now),
		ElapsedNanoseconds: out.Elapsed.String(),
	}, nil
}

// CreateMark stores a named instant.
// @Summary Create mark
// @Tags Timeline
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "replay-safe request key"
// @Param request body CreateMarkRequest true "mark"
// @Success 201 {object} router.successResponse{data=MarkResponse}
// @Failure 409 {object} router.errorResponse "Conflict"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/timeline/marks [post]
func (h *HTTPEndpoint) CreateMark(r *router.Request) (any, error) {
	var req CreateMarkRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	m, err := h.uc.CreateMark(r.Context(), usecase.CreateMarkInput{
		Name:           req.Name,
		At:             req.At,
		Labels:         req.Labels,
		IdempotencyKey: r.Header.Get(HeaderIdempotencyKey),
	})
	if err != nil {
		return nil, err
	}

	return MarkCreatedResponse{MarkResponse: newMarkResponse(*m)}, nil
}

// ListMarks pages through marks ordered by instant.
// @Summary List marks
// @Tags Timeline
// @Produce json
// @Param limit query int false "page size, default 20, max 100"
// @Param offset query int false "rows to skip"
// @Success 200 {object} router.successResponse{data=MarksResponse}
// @Router /api/v1/timeline/marks [get]
func (h *HTTPEndpoint) ListMarks(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}
	offset, err := r.GetQueryInt32("offset")
	if err != nil {
		return nil, err
	}

	out, err := h.uc.ListMarks(r.Context(), usecase.ListMarksInput{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	marks := make([]MarkResponse, 0, len(out.Marks))
	for _, m := range out.Marks {
		marks = append(marks, newMarkResponse(m))
	}

	return MarksResponse{Marks: marks, total: out.Total, limit: out.Limit, offset: out.Offset}, nil
}

// GetMark returns one mark.
// @Summary Get mark
// @Tags Timeline
// @Produce json
// @Param name path string true "mark name"
// @Success 200 {object} router.successResponse{data=MarkResponse}
// @Failure 404 {object} router.errorResponse "Not found"
// @Router /api/v1/timeline/marks/{name} [get]
func (h *HTTPEndpoint) GetMark(r *router.Request) (any, error) {
	m, err := h.uc.GetMark(r.Context(), r.GetParam("name"))
	if err != nil {
		return nil, err
	}

	return newMarkResponse(*m), nil
}

// DeleteMark removes a mark.
// @Summary Delete mark
// @Tags Timeline
// @Param name path string true "mark name"
// @Success 204 "No Content"
// @Failure 404 {object} router.errorResponse "Not found"
// @Router /api/v1/timeline/marks/{name} [delete]
func (h *HTTPEndpoint) DeleteMark(r *router.Request) (any, error) {
	return nil, h.uc.DeleteMark(r.Context(), r.GetParam("name"))
}
