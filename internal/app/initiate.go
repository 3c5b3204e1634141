package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shandysiswandi/goinstant/internal/pkg/clock"
	"github.com/shandysiswandi/goinstant/internal/pkg/config"
	"github.com/shandysiswandi/goinstant/internal/pkg/goroutine"
	"github.com/shandysiswandi/goinstant/internal/pkg/idempotency"
	"github.com/shandysiswandi/goinstant/internal/pkg/instrument"
	"github.com/shandysiswandi/goinstant/internal/pkg/router"
	"github.com/shandysiswandi/goinstant/internal/pkg/uid"
	"github.com/shandysiswandi/goinstant/internal/pkg/validator"
)

const pingTimeout = 5 * time.Second

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	if os.Getenv("LOCAL") == "true" {
		return "./config/config.yaml"
	}
	return "/config/config.yaml"
}

func (a *App) initConfig() {
	cfg, err := config.NewViper(configPath())
	if err != nil {
		fatal("failed to init config", err)
	}

	a.config = cfg
	a.addCloser("Config", func(context.Context) error { return cfg.Close() })
}

func instrumentConfig(cfg config.Config) *instrument.Config {
	return &instrument.Config{
		Enabled:          cfg.GetBool("instrument.enabled"),
		ServiceName:      cfg.GetString("instrument.service_name"),
		ServiceVersion:   cfg.GetString("instrument.service_version"),
		Environment:      cfg.GetString("instrument.env"),
		OTLPEndpoint:     cfg.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       cfg.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: cfg.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  cfg.GetSecond("instrument.metric_interval_seconds"),
		LogLevel:         cfg.GetString("instrument.log_level"),
		MaskFields:       cfg.GetArray("instrument.log_mask_fields"),
	}
}

func (a *App) initInstrument() {
	ins, err := instrument.New(a.ctx, instrumentConfig(a.config))
	if err != nil {
		fatal("failed to init instrumentation", err)
	}

	a.ins = ins
	a.addCloser("Instrument", ins.Shutdown)
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	v, err := validator.NewV10Validator()
	if err != nil {
		fatal("failed to init validation v10 validator", err)
	}
	a.validator = v

	// A bad reference instant should stop the boot, not the first request.
	if _, err := a.config.GetInstant("timeline.reference_instant"); err != nil {
		fatal("invalid timeline reference instant", err)
	}
}

func poolConfig(cfg config.Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.GetString("database.url"))
	if err != nil {
		return nil, fmt.Errorf("parse database.url: %w", err)
	}

	if n := cfg.GetInt32("database.pool.max_conns"); n > 0 {
		pc.MaxConns = n
	}
	if n := cfg.GetInt32("database.pool.min_conns"); n > 0 {
		pc.MinConns = n
	}
	if d := cfg.GetSecond("database.pool.max_conn_lifetime_seconds"); d > 0 {
		pc.MaxConnLifetime = d
	}
	if d := cfg.GetSecond("database.pool.max_conn_idle_seconds"); d > 0 {
		pc.MaxConnIdleTime = d
	}
	if d := cfg.GetSecond("database.pool.health_check_period_seconds"); d > 0 {
		pc.HealthCheckPeriod = d
	}

	return pc, nil
}

func (a *App) initDatabase() {
	pc, err := poolConfig(a.config)
	if err != nil {
		fatal("failed to build DB pool config", err)
	}

	pool, err := pgxpool.NewWithConfig(a.ctx, pc)
	if err != nil {
		fatal("failed to create DB connection pool", err)
	}

	ctx, cancel := context.WithTimeout(a.ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		fatal("failed to ping DB", err)
	}

	a.dbConn = pool
	a.addCloser("Database", func(context.Context) error {
		pool.Close()
		return nil
	})
}

func (a *App) initCache() {
	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		fatal("failed to parse redis url", err)
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(a.ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		fatal("failed to ping redis", err)
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(rdb)
	a.addCloser("Redis", func(context.Context) error { return rdb.Close() })
}

func corsOptions(cfg config.Config) cors.Options {
	return cors.Options{
		AllowedOrigins: cfg.GetArray("app.server.cors"),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{router.HeaderCorrelationID, router.HeaderServerInstant},
	}
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Clock:      a.clock,
		Instrument: a.ins,
	})
	a.router.GET("/health", newHealth(a.dbConn, a.cacheConn).Check)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           cors.New(corsOptions(a.config)).Handler(a.router),
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}
