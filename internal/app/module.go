package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/goinstant/internal/timeline"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.timeline.enabled") {
		if err := timeline.New(timeline.Dependency{
			DBConn:      a.dbConn,
			CacheConn:   a.cacheConn,
			Goroutine:   a.goroutine,
			Router:      a.router,
			Idempotency: a.idemp,
			Config:      a.config,
			Instrument:  a.ins,
			Clock:       a.clock,
			Validator:   a.validator,
		}); err != nil {
			slog.Error("failed to init module timeline", "error", err)
			os.Exit(1)
		}
	}
}
