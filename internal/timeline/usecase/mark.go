package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/goinstant/internal/pkg/goerror"
	"github.com/shandysiswandi/goinstant/internal/pkg/idempotency"
	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/shandysiswandi/goinstant/internal/pkg/valueobject"
	"github.com/shandysiswandi/goinstant/internal/timeline/entity"
)

type (
	CreateMarkInput struct {
		Name           string            `validate:"required,max=64,printascii,excludesall=/"`
		At             string            `validate:"required,instant"`
		Labels         map[string]string `validate:"max=16,dive,keys,required,max=64,endkeys,max=256"`
		IdempotencyKey string            `validate:"max=128"`
	}

	ListMarksInput struct {
		Limit  int32 `validate:"min=0"`
		Offset int32 `validate:"min=0"`
	}

	ListMarksOutput struct {
		Marks  []entity.Mark
		Total  int64
		Limit  int32
		Offset int32
	}
)

// CreateMark stores a named instant. With an idempotency key a replayed
// request returns the mark created by the first attempt.
func (s *Usecase) CreateMark(ctx context.Context, in CreateMarkInput) (*entity.Mark, error) {
	ctx, span := s.startSpan(ctx, "CreateMark")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	at, err := instant.Parse(in.At)
	if err != nil {
		return nil, mapInstantError("at", err)
	}

	mark := entity.Mark{
		Name:      in.Name,
		At:        at,
		Labels:    valueobject.Labels(in.Labels),
		CreatedAt: s.clock.Now(),
	}
	if mark.Labels == nil {
		mark.Labels = valueobject.Labels{}
	}

	create := func(ctx context.Context) error {
		return s.createMark(ctx, mark)
	}

	if in.IdempotencyKey == "" {
		if err := create(ctx); err != nil {
			return nil, err
		}
		return &mark, nil
	}

	err = s.idemp.Exec(ctx, "timeline:mark:"+in.IdempotencyKey, create,
		idempotency.WithFingerprint(markFingerprint(mark)))
	switch {
	case err == nil:
		return &mark, nil
	case errors.Is(err, idempotency.ErrFingerprintMismatch):
		return nil, goerror.NewInvalidInput(nil, "idempotency_key", "was already used with a different request")
	case errors.Is(err, idempotency.ErrAlreadyCompleted):
		slog.InfoContext(ctx, "replayed mark creation", "name", mark.Name)
		return s.GetMark(ctx, mark.Name)
	case errors.Is(err, idempotency.ErrAlreadyInProgress):
		return nil, goerror.NewConflict("Request with this idempotency key is in progress")
	case errors.Is(err, idempotency.ErrAlreadyFailed):
		return nil, goerror.NewConflict("Request with this idempotency key already failed")
	}

	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return nil, gerr
	}

	slog.ErrorContext(ctx, "failed to run idempotent mark creation", "name", mark.Name, "error", err)
	return nil, goerror.NewServer(err)
}

// markFingerprint digests the fields a client chose, so a replay can be told
// apart from a different request that reuses the key.
func markFingerprint(m entity.Mark) string {
	h := sha256.New()
	h.Write([]byte(m.Name))
	h.Write([]byte{0})
	h.Write([]byte(m.At.String()))
	for _, k := range m.Labels.Keys() {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(m.Labels.Get(k)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Usecase) createMark(ctx context.Context, mark entity.Mark) error {
	err := s.repoDB.CreateMark(ctx, mark)
	if errors.Is(err, goerror.ErrConflict) {
		return goerror.NewConflict("Mark already exists")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create mark", "name", mark.Name, "error", err)
		return goerror.NewServer(err)
	}

	s.warmCache(ctx, mark)

	return nil
}

// GetMark reads through the cache.
func (s *Usecase) GetMark(ctx context.Context, name string) (*entity.Mark, error) {
	ctx, span := s.startSpan(ctx, "GetMark")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, goerror.NewInvalidInput(nil, "name", "is required")
	}

	mark, err := s.repoCache.GetMark(ctx, name)
	if err == nil {
		return mark, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "failed to cache get mark, falling back to db", "name", name, "error", err)
	}

	mark, err = s.repoDB.GetMark(ctx, name)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewNotFound("Mark not found")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get mark", "name", name, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoCache.SetMark(ctx, *mark, s.cacheTTL()); err != nil {
		slog.WarnContext(ctx, "failed to cache set mark", "name", name, "error", err)
	}

	return mark, nil
}

// ListMarks pages through marks ordered by instant, then warms the cache for
// the returned page in the background.
func (s *Usecase) ListMarks(ctx context.Context, in ListMarksInput) (*ListMarksOutput, error) {
	ctx, span := s.startSpan(ctx, "ListMarks")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Limit == 0 {
		in.Limit = defaultListLimit
	}
	in.Limit = min(in.Limit, maxListLimit)

	marks, err := s.repoDB.ListMarks(ctx, in.Limit, in.Offset)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list marks", "error", err)
		return nil, goerror.NewServer(err)
	}

	total, err := s.repoDB.CountMarks(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count marks", "error", err)
		return nil, goerror.NewServer(err)
	}

	s.warmCache(ctx, marks...)

	return &ListMarksOutput{Marks: marks, Total: total, Limit: in.Limit, Offset: in.Offset}, nil
}

// DeleteMark removes a mark and evicts it from the cache. The cache keeps a
// tombstone for the name so an in-flight warm or read-through cannot put the
// deleted mark back.
func (s *Usecase) DeleteMark(ctx context.Context, name string) error {
	ctx, span := s.startSpan(ctx, "DeleteMark")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return goerror.NewInvalidInput(nil, "name", "is required")
	}

	deleted, err := s.repoDB.DeleteMark(ctx, name)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete mark", "name", name, "error", err)
		return goerror.NewServer(err)
	}
	if !deleted {
		return goerror.NewNotFound("Mark not found")
	}

	if err := s.repoCache.DeleteMark(ctx, name); err != nil {
		slog.WarnContext(ctx, "failed to cache delete mark", "name", name, "error", err)
	}

	return nil
}

func (s *Usecase) warmCache(ctx context.Context, marks ...entity.Mark) {
	if len(marks) == 0 {
		return
	}

	ttl := s.cacheTTL()
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		var errs []error
		for _, m := range marks {
			if err := s.repoCache.SetMark(ctx, m, ttl); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			slog.WarnContext(ctx, "failed to warm mark cache", "count", len(marks), "error", err)
		}
		return nil
	})
}
