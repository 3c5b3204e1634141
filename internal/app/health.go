package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goinstant/internal/pkg/router"
)

const healthTimeout = 2 * time.Second

type dbPinger interface {
	Ping(ctx context.Context) error
}

type cachePinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type health struct {
	db    dbPinger
	cache cachePinger
}

func newHealth(db dbPinger, cache cachePinger) *health {
	return &health{db: db, cache: cache}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h healthResponse) StatusCode() int {
	if h.Status != "ok" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func (h healthResponse) Message() string {
	if h.Status != "ok" {
		return "service is unhealthy"
	}
	return "service is healthy"
}

// Check pings postgres and redis. Failures are listed per dependency and
// turn the response into a 503.
func (h *health) Check(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	fail := func(name string, err error) {
		slog.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
		if resp.Checks == nil {
			resp.Checks = map[string]string{}
		}
		resp.Status = "unavailable"
		resp.Checks[name] = err.Error()
	}

	if err := h.db.Ping(ctx); err != nil {
		fail("postgres", err)
	}
	if err := h.cache.Ping(ctx).Err(); err != nil {
		fail("redis", err)
	}

	return resp, nil
}
