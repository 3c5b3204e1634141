package usecase

import (
	"context"
	"errors"
	"math"
	"math/big"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goinstant/internal/pkg/clock"
	"github.com/shandysiswandi/goinstant/internal/pkg/config"
	"github.com/shandysiswandi/goinstant/internal/pkg/goerror"
	"github.com/shandysiswandi/goinstant/internal/pkg/goroutine"
	"github.com/shandysiswandi/goinstant/internal/pkg/idempotency"
	"github.com/shandysiswandi/goinstant/internal/pkg/instant"
	"github.com/shandysiswandi/goinstant/internal/pkg/instrument"
	"github.com/shandysiswandi/goinstant/internal/pkg/validator"
	"github.com/shandysiswandi/goinstant/internal/timeline/entity"
)

var fixedNow = time.Date(2020, 1, 1, 0, 0, 1, 500, time.UTC)

type fakeDB struct {
	mu    sync.Mutex
	marks map[string]entity.Mark
	err   error
	gets  int
}

func newFakeDB() *fakeDB {
	return &fakeDB{marks: map[string]entity.Mark{}}
}

func (f *fakeDB) CreateMark(_ context.Context, m entity.Mark) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.marks[m.Name]; ok {
		return goerror.ErrConflict
	}
	f.marks[m.Name] = m
	return nil
}

func (f *fakeDB) GetMark(_ context.Context, name string) (*entity.Mark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.marks[name]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &m, nil
}

func (f *fakeDB) ListMarks(_ context.Context, limit, offset int32) ([]entity.Mark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	all := make([]entity.Mark, 0, len(f.marks))
	for _, m := range f.marks {
		all = append(all, m)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].At.Before(all[j].At) })
	if int(offset) >= len(all) {
		return []entity.Mark{}, nil
	}
	all = all[offset:]
	if int(limit) < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeDB) CountMarks(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.marks)), f.err
}

func (f *fakeDB) DeleteMark(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.marks[name]
	delete(f.marks, name)
	return ok, nil
}

// fakeCache follows the redis cache contract: a deleted name is tombstoned
// and later SetMark calls for it are dropped. A non-nil gate holds SetMark
// until it is closed.
type fakeCache struct {
	mu    sync.Mutex
	marks map[string]entity.Mark
	tombs map[string]bool
	gate  chan struct{}
	err   error
}

func newFakeCache() *fakeCache {
	return &fakeCache{marks: map[string]entity.Mark{}, tombs: map[string]bool{}}
}

func (f *fakeCache) GetMark(_ context.Context, name string) (*entity.Mark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.marks[name]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &m, nil
}

func (f *fakeCache) SetMark(_ context.Context, m entity.Mark, _ time.Duration) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if !f.tombs[m.Name] {
		f.marks[m.Name] = m
	}
	return nil
}

func (f *fakeCache) DeleteMark(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tombs[name] = true
	delete(f.marks, name)
	return f.err
}

func (f *fakeCache) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.marks[name]
	return ok
}

// memStore is an in-memory idempotency.Store.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memStore) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (m *memStore) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memStore) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

type fixture struct {
	uc    *Usecase
	db    *fakeDB
	cache *fakeCache
	gm    *goroutine.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
timeline:
  reference_instant: "2020-01-01T00:00:00.000000000Z"
  cache:
    ttl_seconds: 60
`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	f := &fixture{db: newFakeDB(), cache: newFakeCache(), gm: goroutine.NewManager(4)}
	f.uc = New(Dependency{
		RepoDB:      f.db,
		RepoCache:   f.cache,
		Idempotency: idempotency.New(&memStore{data: map[string]string{}}),
		Goroutine:   f.gm,
		Validator:   v,
		Config:      cfg,
		Clock:       clock.NewFixed(fixedNow),
		Instrument:  instrument.NewNoop(),
	})
	return f
}

func assertCode(t *testing.T, err error, want goerror.Code) {
	t.Helper()
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *goerror.Error, got %T: %v", err, err)
	}
	if gerr.Code() != want {
		t.Fatalf("code = %s, want %s (%v)", gerr.Code(), want, err)
	}
}

func TestUsecase_Now(t *testing.T) {
	f := newFixture(t)

	got := f.uc.Now(context.Background())

	if got.Milliseconds() != 1577836801000 || got.SubMillisecondNanoseconds() != 500 {
		t.Fatalf("Now() = %s", got)
	}
}

func TestUsecase_Parse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("Valid", func(t *testing.T) {
		got, err := f.uc.Parse(ctx, ParseInput{Value: "2020-01-01T00:00:00.123456789Z"})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if got.String() != "2020-01-01T00:00:00.123456789Z" {
			t.Fatalf("got %s", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := f.uc.Parse(ctx, ParseInput{})
		assertCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := f.uc.Parse(ctx, ParseInput{Value: "2020-01-01T00:00:00.123Z"})
		assertCode(t, err, goerror.CodeInvalidInput)

		var gerr *goerror.Error
		errors.As(err, &gerr)
		if gerr.Fields()["value"] == "" {
			t.Fatalf("expected value field error, got %v", gerr.Fields())
		}
	})
}

func TestUsecase_FromEpoch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		in        EpochInput
		wantNanos string
		wantCode  goerror.Code
		wantErr   bool
	}{
		{name: "Seconds", in: EpochInput{Unit: "s", Value: "1.5"}, wantNanos: "1500000000"},
		{name: "MillisecondsFloor", in: EpochInput{Unit: "ms", Value: "-1.5"}, wantNanos: "-2000000"},
		{name: "Microseconds", in: EpochInput{Unit: "us", Value: "-1"}, wantNanos: "-1000"},
		{name: "Nanoseconds", in: EpochInput{Unit: "NS", Value: "1577836800123456789"}, wantNanos: "1577836800123456789"},
		{name: "UnknownUnit", in: EpochInput{Unit: "h", Value: "1"}, wantErr: true, wantCode: goerror.CodeInvalidInput},
		{name: "NotNumeric", in: EpochInput{Unit: "s", Value: "soon"}, wantErr: true, wantCode: goerror.CodeInvalidInput},
		{name: "FractionalNanos", in: EpochInput{Unit: "ns", Value: "1.5"}, wantErr: true, wantCode: goerror.CodeInvalidInput},
		{name: "Overflow", in: EpochInput{Unit: "ns", Value: "1000000000000000000000000000000000"}, wantErr: true, wantCode: goerror.CodeOutOfRange},
		{name: "Missing", in: EpochInput{Unit: "s"}, wantErr: true, wantCode: goerror.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.uc.FromEpoch(ctx, tt.in)
			if tt.wantErr {
				assertCode(t, err, tt.wantCode)
				return
			}
			if err != nil {
				t.Fatalf("FromEpoch: %v", err)
			}
			want, _ := new(big.Int).SetString(tt.wantNanos, 10)
			if got.Nanoseconds().Cmp(want) != 0 {
				t.Fatalf("nanos = %s, want %s", got.Nanoseconds(), want)
			}
		})
	}
}

func TestUsecase_FromUTC(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("CarriesSubMillisecondFields", func(t *testing.T) {
		got, err := f.uc.FromUTC(ctx, UTCInput{
			Year: 2020, Month: 1, Day: 1, Millisecond: 999, Microsecond: 999, Nanosecond: 1000,
		})
		if err != nil {
			t.Fatalf("FromUTC: %v", err)
		}
		if got.String() != "2020-01-01T00:00:01.000000000Z" {
			t.Fatalf("got %s", got)
		}
	})

	t.Run("HugeNanosecondIsExact", func(t *testing.T) {
		// Arrange
		want := new(big.Int).Mul(big.NewInt(1577836800000), big.NewInt(1_000_000))
		want.Add(want, big.NewInt(math.MaxInt64))

		// Act
		got, err := f.uc.FromUTC(ctx, UTCInput{Year: 2020, Month: 1, Day: 1, Nanosecond: math.MaxInt64})

		// Assert
		if err != nil {
			t.Fatalf("FromUTC: %v", err)
		}
		if got.Nanoseconds().Cmp(want) != 0 {
			t.Fatalf("nanos = %s, want %s", got.Nanoseconds(), want)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := f.uc.FromUTC(ctx, UTCInput{
			Year: 1970, Month: 1, Day: 1, Millisecond: math.MaxInt64 - 1, Nanosecond: 2_000_000,
		})
		assertCode(t, err, goerror.CodeOutOfRange)
	})
}

func TestUsecase_Zone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("Valid", func(t *testing.T) {
		z, err := f.uc.Zone(ctx, ZoneInput{Instant: "2020-01-01T00:00:00.000000001Z", Zone: "Asia/Tokyo"})
		if err != nil {
			t.Fatalf("Zone: %v", err)
		}
		if got := z.String(); got != "2020-01-01T09:00:00.000000001+09:00[Asia/Tokyo]" {
			t.Fatalf("String() = %q", got)
		}
	})

	t.Run("BadZone", func(t *testing.T) {
		_, err := f.uc.Zone(ctx, ZoneInput{Instant: "2020-01-01T00:00:00.000000001Z", Zone: "Nowhere/City"})
		assertCode(t, err, goerror.CodeInvalidInput)
	})
}

func TestUsecase_Reference(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.Reference(context.Background())
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	if out.Elapsed.String() != "1000000500" {
		t.Fatalf("Elapsed = %s, want 1000000500", out.Elapsed)
	}
	if !out.Reference.Equal(instant.MustParse("2020-01-01T00:00:00.000000000Z")) {
		t.Fatalf("Reference = %s", out.Reference)
	}
}

func TestUsecase_Marks(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateGetListDelete", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		created, err := f.uc.CreateMark(ctx, CreateMarkInput{
			Name:   "launch",
			At:     "2021-06-01T12:00:00.000000042Z",
			Labels: map[string]string{"env": "prod"},
		})
		if err != nil {
			t.Fatalf("CreateMark: %v", err)
		}
		if _, err := f.uc.CreateMark(ctx, CreateMarkInput{Name: "epoch", At: "1970-01-01T00:00:00.000000000Z"}); err != nil {
			t.Fatalf("CreateMark epoch: %v", err)
		}
		if err := f.gm.Wait(); err != nil {
			t.Fatalf("Wait: %v", err)
		}

		// Assert
		if created.At.SubMillisecondNanoseconds() != 42 || !created.CreatedAt.Equal(fixedNow) {
			t.Fatalf("unexpected mark %+v", created)
		}
		if !f.cache.has("launch") {
			t.Fatalf("expected cache warmed after create")
		}

		got, err := f.uc.GetMark(ctx, "launch")
		if err != nil || got.Labels.Get("env") != "prod" {
			t.Fatalf("GetMark = %+v, %v", got, err)
		}
		if f.db.gets != 0 {
			t.Fatalf("expected cache hit, db gets = %d", f.db.gets)
		}

		list, err := f.uc.ListMarks(ctx, ListMarksInput{})
		if err != nil {
			t.Fatalf("ListMarks: %v", err)
		}
		if list.Total != 2 || list.Limit != defaultListLimit || list.Marks[0].Name != "epoch" {
			t.Fatalf("ListMarks = %+v", list)
		}

		if err := f.uc.DeleteMark(ctx, "launch"); err != nil {
			t.Fatalf("DeleteMark: %v", err)
		}
		if f.cache.has("launch") {
			t.Fatalf("cache not invalidated")
		}
		_, err = f.uc.GetMark(ctx, "launch")
		assertCode(t, err, goerror.CodeNotFound)
	})

	t.Run("Duplicate", func(t *testing.T) {
		f := newFixture(t)
		in := CreateMarkInput{Name: "dup", At: "2021-06-01T12:00:00.000000000Z"}

		if _, err := f.uc.CreateMark(ctx, in); err != nil {
			t.Fatalf("CreateMark: %v", err)
		}
		_, err := f.uc.CreateMark(ctx, in)
		assertCode(t, err, goerror.CodeConflict)
	})

	t.Run("IdempotentReplay", func(t *testing.T) {
		f := newFixture(t)
		in := CreateMarkInput{Name: "once", At: "2021-06-01T12:00:00.000000000Z", IdempotencyKey: "req-1"}

		first, err := f.uc.CreateMark(ctx, in)
		if err != nil {
			t.Fatalf("first CreateMark: %v", err)
		}
		second, err := f.uc.CreateMark(ctx, in)
		if err != nil {
			t.Fatalf("replayed CreateMark: %v", err)
		}
		if !second.At.Equal(first.At) || second.Name != first.Name {
			t.Fatalf("replay returned %+v, want %+v", second, first)
		}
	})

	t.Run("IdempotentKeyReusedForOtherMark", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		first := CreateMarkInput{Name: "alpha", At: "2021-06-01T12:00:00.000000000Z", IdempotencyKey: "req-2"}
		other := CreateMarkInput{Name: "beta", At: "2021-06-01T12:00:00.000000000Z", IdempotencyKey: "req-2"}

		// Act
		if _, err := f.uc.CreateMark(ctx, first); err != nil {
			t.Fatalf("first CreateMark: %v", err)
		}
		_, err := f.uc.CreateMark(ctx, other)

		// Assert
		assertCode(t, err, goerror.CodeInvalidInput)
		var gerr *goerror.Error
		errors.As(err, &gerr)
		if gerr.Fields()["idempotency_key"] == "" {
			t.Fatalf("expected idempotency_key field error, got %v", gerr.Fields())
		}
		if _, ok := f.db.marks["beta"]; ok {
			t.Fatalf("reused key created a second mark")
		}
	})

	t.Run("DeleteWinsOverPendingWarm", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.db.marks["gone"] = entity.Mark{Name: "gone", At: instant.MustParse("2000-01-01T00:00:00.000000000Z")}
		f.cache.gate = make(chan struct{})

		// Act
		if _, err := f.uc.ListMarks(ctx, ListMarksInput{}); err != nil {
			t.Fatalf("ListMarks: %v", err)
		}
		if err := f.uc.DeleteMark(ctx, "gone"); err != nil {
			t.Fatalf("DeleteMark: %v", err)
		}
		close(f.cache.gate)
		if err := f.gm.Wait(); err != nil {
			t.Fatalf("Wait: %v", err)
		}

		// Assert
		_, err := f.uc.GetMark(ctx, "gone")
		assertCode(t, err, goerror.CodeNotFound)
	})

	t.Run("Validation", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.CreateMark(ctx, CreateMarkInput{Name: "a/b", At: "not-a-time"})

		var verr validator.V10ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := verr["name"]; !ok {
			t.Fatalf("expected name error: %v", verr)
		}
		if _, ok := verr["at"]; !ok {
			t.Fatalf("expected at error: %v", verr)
		}
	})

	t.Run("CacheMissFallsBackAndFills", func(t *testing.T) {
		f := newFixture(t)
		f.db.marks["cold"] = entity.Mark{Name: "cold", At: instant.MustParse("2000-01-01T00:00:00.000000000Z")}

		if _, err := f.uc.GetMark(ctx, "cold"); err != nil {
			t.Fatalf("GetMark: %v", err)
		}
		if f.db.gets != 1 || !f.cache.has("cold") {
			t.Fatalf("db gets = %d, cached = %v", f.db.gets, f.cache.has("cold"))
		}
	})

	t.Run("CacheErrorFallsBack", func(t *testing.T) {
		f := newFixture(t)
		f.cache.err = errors.New("redis down")
		f.db.marks["warm"] = entity.Mark{Name: "warm"}

		if _, err := f.uc.GetMark(ctx, "warm"); err != nil {
			t.Fatalf("GetMark: %v", err)
		}
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		f := newFixture(t)
		assertCode(t, f.uc.DeleteMark(ctx, "ghost"), goerror.CodeNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		f := newFixture(t)
		f.db.err = errors.New("db down")

		_, err := f.uc.ListMarks(ctx, ListMarksInput{Limit: 500})
		assertCode(t, err, goerror.CodeInternal)
	})
}
