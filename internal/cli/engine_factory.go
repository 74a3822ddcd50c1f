package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/internal/config"
	"github.com/aretw0/formflow/internal/ratelimit"
	"github.com/aretw0/formflow/pkg/adapters/blob"
	httpAdapter "github.com/aretw0/formflow/pkg/adapters/http"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/adapters/redis"
	"github.com/aretw0/formflow/pkg/adapters/sqlite"
	"github.com/aretw0/formflow/pkg/observability"
	"github.com/aretw0/formflow/pkg/persistence/middleware"
	"github.com/aretw0/formflow/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// limiterIdleTTL is how long an idle participant keeps its token bucket.
const limiterIdleTTL = 10 * time.Minute

// App holds everything a command needs, built from one Config.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Repo     ports.SchemaRepository
	Store    ports.KVStore
	Engine   *formflow.Engine
	Registry *prometheus.Registry

	closers []func() error
}

// NewApp wires the configured backends into an engine.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	app := &App{Config: cfg, Logger: logger}

	repo, err := app.openRepository(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Repo = repo

	var locker ports.DistributedLocker
	switch cfg.Session.Backend {
	case config.BackendRedis:
		store := redis.New(cfg.Session.Redis.Addr, cfg.Session.Redis.Password, cfg.Session.Redis.DB,
			redis.WithPrefix(cfg.Session.Redis.Prefix))
		app.closers = append(app.closers, store.Close)
		if err := store.Ping(ctx); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Session.Redis.Addr, err)
		}
		if cfg.Session.Lock {
			locker = redis.NewLocker(store.Client(), cfg.Session.Redis.Prefix)
		}
		app.Store = store
	default:
		app.Store = memory.NewStore()
	}

	enc, err := cfg.Session.Encryption()
	if err != nil {
		app.Close()
		return nil, err
	}
	if enc != nil {
		app.Store = middleware.NewEncryptionMiddleware(*enc)(app.Store)
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(app.Registry)

	opts := []formflow.Option{
		formflow.WithLogger(logger),
		formflow.WithStore(app.Store),
		formflow.WithSessionTTL(cfg.Session.TTL.Std()),
		formflow.WithIcon(cfg.HTTP.Icon),
		formflow.WithBasePath(cfg.HTTP.BasePath),
		formflow.WithLifecycleHooks(observability.Combine(
			metrics.Hooks(),
			observability.LoggingHooks(logger),
		)),
	}
	if locker != nil {
		opts = append(opts, formflow.WithLocker(locker, 0))
	}
	engine, err := formflow.New(app.Repo, opts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	app.Engine = engine

	return app, nil
}

func (a *App) openRepository(ctx context.Context) (ports.SchemaRepository, error) {
	cfg := a.Config.Schema
	switch cfg.Backend {
	case config.BackendSQLite:
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open form database %s: %w", cfg.SQLitePath, err)
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	case config.BackendBlob:
		repo, err := blob.Open(ctx, cfg.BucketURL, blob.WithPrefix(cfg.Prefix))
		if err != nil {
			return nil, fmt.Errorf("failed to open form bucket %s: %w", cfg.BucketURL, err)
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	default:
		repo, err := memory.NewRepository()
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
}

// HTTPHandler builds the action API with the configured rate limit and /metrics.
func (a *App) HTTPHandler() http.Handler {
	return httpAdapter.NewHandler(a.Engine,
		httpAdapter.WithBasePath(a.Config.HTTP.BasePath),
		httpAdapter.WithLimiter(ratelimit.New(a.Config.HTTP.RateLimit, a.Config.HTTP.RateBurst, limiterIdleTTL)),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})),
		httpAdapter.WithLogger(a.Logger),
	)
}

// Close releases backend connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
