package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goinstant/internal/pkg/goerror"
	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/shandysiswandi/goinstant/internal/pkg/instrument"
	"github.com/shandysiswandi/goinstant/internal/pkg/valueobject"
	"github.com/shandysiswandi/goinstant/internal/timeline/entity"
)

type memClient struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMemClient() *memClient {
	return &memClient{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memClient) Get(_ context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memClient) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

// Eval mirrors setUnlessDeleted, the only script Cache runs.
func (m *memClient) Eval(_ context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	if m.err != nil {
		return redis.NewCmdResult(nil, m.err)
	}
	if _, ok := m.data[keys[1]]; ok {
		return redis.NewCmdResult(int64(0), nil)
	}
	m.data[keys[0]] = string(args[0].([]byte))
	m.ttls[keys[0]] = time.Duration(args[1].(int64)) * time.Millisecond
	return redis.NewCmdResult(int64(1), nil)
}

func (m *memClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, m.err)
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()

	// Year 10000 has no parseable text form; the integer parts still round trip.
	at, err := instant.FromUTC(10000, 1, 1, 0, 0, 0, 0, 0, 7)
	if err != nil {
		t.Fatalf("FromUTC: %v", err)
	}

	tests := []struct {
		name string
		at   instant.Instant
	}{
		{name: "BeforeEpoch", at: instant.MustParse("1969-12-31T23:59:59.999999999Z")},
		{name: "ExtendedYear", at: at},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mc := newMemClient()
			c := &Cache{client: mc, ins: instrument.NewNoop()}
			mark := entity.Mark{
				Name:      "m",
				At:        tt.at,
				Labels:    valueobject.Labels{"a": "b"},
				CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			}

			// Act
			if err := c.SetMark(ctx, mark, time.Minute); err != nil {
				t.Fatalf("SetMark: %v", err)
			}
			got, err := c.GetMark(ctx, "m")

			// Assert
			if err != nil {
				t.Fatalf("GetMark: %v", err)
			}
			if !got.At.Equal(tt.at) || got.Labels.Get("a") != "b" || !got.CreatedAt.Equal(mark.CreatedAt) {
				t.Fatalf("got %+v, want %+v", got, mark)
			}
			if mc.ttls["timeline:mark:m"] != time.Minute {
				t.Fatalf("ttl = %v", mc.ttls["timeline:mark:m"])
			}
		})
	}
}

func TestCache_MissAndDelete(t *testing.T) {
	ctx := context.Background()
	mc := newMemClient()
	c := &Cache{client: mc, ins: instrument.NewNoop()}

	if _, err := c.GetMark(ctx, "absent"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("GetMark miss = %v, want ErrNotFound", err)
	}

	mc.data["timeline:mark:x"] = `{"name":"x","at_ms":0,"at_sub_ms":0,"labels":{},"created_at":"2024-01-01T00:00:00Z"}`
	if err := c.DeleteMark(ctx, "x"); err != nil {
		t.Fatalf("DeleteMark: %v", err)
	}
	if _, ok := mc.data["timeline:mark:x"]; ok {
		t.Fatalf("key not deleted")
	}

	mc.err = errors.New("redis down")
	if _, err := c.GetMark(ctx, "x"); err == nil || errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("GetMark with backend error = %v", err)
	}
}

func TestCache_SetAfterDeleteIsSkipped(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mc := newMemClient()
	c := &Cache{client: mc, ins: instrument.NewNoop()}
	mark := entity.Mark{Name: "gone", At: instant.MustParse("2020-01-01T00:00:00.000000000Z")}

	// Act
	if err := c.DeleteMark(ctx, "gone"); err != nil {
		t.Fatalf("DeleteMark: %v", err)
	}
	if err := c.SetMark(ctx, mark, time.Minute); err != nil {
		t.Fatalf("SetMark: %v", err)
	}

	// Assert
	if _, err := c.GetMark(ctx, "gone"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("GetMark after delete = %v, want ErrNotFound", err)
	}
	if mc.ttls["timeline:mark-deleted:gone"] != tombstoneTTL {
		t.Fatalf("tombstone ttl = %v", mc.ttls["timeline:mark-deleted:gone"])
	}
}
