package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goinstant/internal/pkg/clock"
	"github.com/shandysiswandi/goinstant/internal/pkg/config"
	"github.com/shandysiswandi/goinstant/internal/pkg/goroutine"
	"github.com/shandysiswandi/goinstant/internal/pkg/idempotency"
	"github.com/shandysiswandi/goinstant/internal/pkg/instrument"
	"github.com/shandysiswandi/goinstant/internal/pkg/router"
	"github.com/shandysiswandi/goinstant/internal/pkg/uid"
	"github.com/shandysiswandi/goinstant/internal/pkg/validator"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

// App owns every long-lived dependency of the service. Construction exits
// the process on the first failure; there is nothing useful to serve with
// a partial wiring.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	config config.Config
	ins    instrument.Instrumentation

	clock     clock.Clocker
	uuid      uid.StringID
	validator validator.Validator
	goroutine *goroutine.Manager

	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency

	router     *router.Router
	httpServer *http.Server

	// closers run in reverse order on Stop.
	closers []closer
}

// New wires the application from the config file named by CONFIG_PATH.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{ctx: ctx, cancel: cancel}

	for _, step := range []func(){
		a.initConfig,
		a.initInstrument,
		a.initLibraries,
		a.initDatabase,
		a.initCache,
		a.initHTTPServer,
		a.initModules,
	} {
		step()
	}

	return a
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}
