package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goinstant/internal/pkg/goerror"
	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/shandysiswandi/goinstant/internal/pkg/instrument"
	"github.com/shandysiswandi/goinstant/internal/pkg/valueobject"
	"github.com/shandysiswandi/goinstant/internal/timeline/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyPrefix       = "timeline:mark:"
	tombstonePrefix = "timeline:mark-deleted:"

	// tombstoneTTL outlives any warm or read-through started before a delete.
	tombstoneTTL = time.Minute
)

// setUnlessDeleted writes KEYS[1] only while the tombstone KEYS[2] is absent.
// ARGV[2] is the ttl in milliseconds, zero for no expiry.
const setUnlessDeleted = `
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
if tonumber(ARGV[2]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`

// client is the part of *redis.Client used by Cache.
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
}

type Cache struct {
	client client
	ins    instrument.Instrumentation
}

func NewCache(rdb *redis.Client, ins instrument.Instrumentation) *Cache {
	return &Cache{client: rdb, ins: ins}
}

// cachedMark keeps the instant as its integer parts so every representable
// value survives, including years the text form cannot parse back.
type cachedMark struct {
	Name      string             `json:"name"`
	AtMs      int64              `json:"at_ms"`
	AtSubMs   int64              `json:"at_sub_ms"`
	Labels    valueobject.Labels `json:"labels"`
	CreatedAt time.Time          `json:"created_at"`
}

func (s *Cache) GetMark(ctx context.Context, name string) (_ *entity.Mark, err error) {
	ctx, span := s.startSpan(ctx, "GetMark")
	defer func() { s.endSpan(span, err) }()

	raw, err := s.client.Get(ctx, keyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var cm cachedMark
	if err = json.Unmarshal(raw, &cm); err != nil {
		return nil, err
	}

	at, err := instant.Unix(cm.AtMs, cm.AtSubMs)
	if err != nil {
		return nil, err
	}

	return &entity.Mark{Name: cm.Name, At: at, Labels: cm.Labels, CreatedAt: cm.CreatedAt}, nil
}

func (s *Cache) SetMark(ctx context.Context, m entity.Mark, ttl time.Duration) (err error) {
	ctx, span := s.startSpan(ctx, "SetMark")
	defer func() { s.endSpan(span, err) }()

	raw, err := json.Marshal(cachedMark{
		Name:      m.Name,
		AtMs:      m.At.Milliseconds(),
		AtSubMs:   m.At.SubMillisecondNanoseconds(),
		Labels:    m.Labels,
		CreatedAt: m.CreatedAt,
	})
	if err != nil {
		return err
	}

	keys := []string{keyPrefix + m.Name, tombstonePrefix + m.Name}
	err = s.client.Eval(ctx, setUnlessDeleted, keys, raw, ttl.Milliseconds()).Err()
	return err
}

// DeleteMark evicts name and leaves a short-lived tombstone that makes
// SetMark a no-op for it.
func (s *Cache) DeleteMark(ctx context.Context, name string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteMark")
	defer func() { s.endSpan(span, err) }()

	if err = s.client.Set(ctx, tombstonePrefix+name, "1", tombstoneTTL).Err(); err != nil {
		return err
	}

	err = s.client.Del(ctx, keyPrefix+name).Err()
	return err
}

func (s *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("timeline.outbound.cache").Start(ctx, name)
}

func (s *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
