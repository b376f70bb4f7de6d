package sessiond

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessiontrack/core/handler"
	"github.com/dmitrymomot/sessiontrack/core/health"
	"github.com/dmitrymomot/sessiontrack/core/logger"
	"github.com/dmitrymomot/sessiontrack/core/response"
	"github.com/dmitrymomot/sessiontrack/core/router"
	"github.com/dmitrymomot/sessiontrack/core/server"
	"github.com/dmitrymomot/sessiontrack/core/session"
	"github.com/dmitrymomot/sessiontrack/middleware"
	"github.com/dmitrymomot/sessiontrack/pkg/netinfo"
)

// Version is stamped at build time with -ldflags "-X ...sessiond.Version=...".
var Version = "dev"

type App struct {
	config   Config
	router   router.Router[*Context]
	server   *server.Server
	registry *session.Registry
	logger   *slog.Logger
	metrics  *metrics
	backend  *backend
	location *time.Location

	store       session.Store
	sessionOpts []session.Option
}

type AppOption func(*App) error

// NewApp opens the configured backend and wires the registry and routes.
func NewApp(ctx context.Context, cfg Config, opts ...AppOption) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{config: cfg}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.logger == nil {
		app.logger = logger.New(
			logger.WithEnvironment(cfg.Env, cfg.AppName),
			logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
			logger.WithContextExtractors(middleware.RequestIDExtractor),
		)
	}

	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	app.location = loc

	if app.store != nil {
		app.backend = &backend{store: app.store}
	} else {
		b, err := openBackend(ctx, cfg, app.logger)
		if err != nil {
			return nil, err
		}
		app.backend = b
	}

	app.metrics = newMetrics("sessiontrack")

	info := netinfo.Lookup()
	sessionOpts := []session.Option{
		session.WithConfig(cfg.Session),
		session.WithLocker(app.backend.locker),
		session.WithObserver(app.metrics),
		session.WithServerInfo(session.ServerInfo{Address: info.Address, Hardware: info.Hardware}),
	}
	app.registry = session.NewRegistry(app.backend.store, append(sessionOpts, app.sessionOpts...)...)

	if app.router == nil {
		app.router = router.New(
			router.WithContextFactory(newContext),
			router.WithErrorHandler(response.LoggingJSONErrorHandler[*Context](app.logger)),
			router.WithLogger[*Context](app.logger),
		)
	}
	app.routes()

	if app.server == nil {
		s, err := server.NewFromConfig(cfg.Server, server.WithLogger(app.logger))
		if err != nil {
			_ = app.backend.close(context.WithoutCancel(ctx))
			return nil, err
		}
		app.server = s
	}

	app.logger.InfoContext(ctx, "application configured",
		logger.Version(Version),
		slog.String("server_ip", info.Address),
		slog.String("server_mac", info.Hardware),
		slog.Duration("max_inactivity", app.registry.Monitor().MaxInactivity()),
	)
	return app, nil
}

func (a *App) routes() {
	h := &handlers{
		registry:   a.registry,
		present:    presenter{loc: a.location},
		log:        a.logger.With(logger.Component("sessions")),
		name:       a.config.AppName,
		allowPurge: a.config.AllowPurge,
	}
	skipHealth := func(ctx handler.Context) bool {
		return strings.HasPrefix(ctx.Request().URL.Path, "/health")
	}

	a.router.Use(
		middleware.RequestID[*Context](),
		middleware.ClientIP[*Context](),
		middleware.LoggingWithConfig[*Context](middleware.LoggingConfig{Logger: a.logger, Skip: skipHealth}),
		a.metrics.middleware,
	)

	a.router.Get("/{$}", h.welcome)
	a.router.Post("/login", h.login)
	a.router.Post("/logout", h.logout)
	a.router.Put("/update", h.update)
	a.router.Get("/status", h.status)
	a.router.Get("/sessions", h.listAll)
	a.router.Get("/sessions/active", h.listActive)

	a.router.Group(func(r router.Router[*Context]) {
		r.Use(middleware.AdminToken[*Context](a.config.AdminToken))
		r.Post("/admin/terminate", h.terminate)
		r.Delete("/admin/sessions", h.purge)
	})

	a.router.Get("/health/live", health.Liveness[*Context])
	a.router.Get("/health/ready", health.Readiness[*Context](a.logger, a.backend.checks...))
	a.router.HandleHTTP("/metrics", a.metrics.handler())
}

// Run serves HTTP until ctx is cancelled, then releases the backend.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(a.server.Run(ctx, a.router))

	err := g.Wait()
	if cerr := a.Close(context.WithoutCancel(ctx)); cerr != nil {
		a.logger.Error("failed to close session backend", logger.Error(cerr))
		err = errors.Join(err, cerr)
	}
	return err
}

// Close releases backend connections.
func (a *App) Close(ctx context.Context) error {
	if a.backend == nil {
		return nil
	}
	return a.backend.close(ctx)
}

// Registry exposes the session registry, e.g. for maintenance commands.
func (a *App) Registry() *session.Registry {
	return a.registry
}

// Handler returns the routed HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

func WithRouter(router router.Router[*Context]) AppOption {
	return func(app *App) error {
		if router == nil {
			return errors.New("router cannot be nil")
		}
		app.router = router
		return nil
	}
}

func WithServer(server *server.Server) AppOption {
	return func(app *App) error {
		if server == nil {
			return errors.New("server cannot be nil")
		}
		app.server = server
		return nil
	}
}

// WithStore bypasses the configured backend.
func WithStore(store session.Store) AppOption {
	return func(app *App) error {
		if store == nil {
			return errors.New("store cannot be nil")
		}
		app.store = store
		return nil
	}
}

// WithSessionOptions appends registry options after the ones derived from Config.
func WithSessionOptions(opts ...session.Option) AppOption {
	return func(app *App) error {
		app.sessionOpts = append(app.sessionOpts, opts...)
		return nil
	}
}
