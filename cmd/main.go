package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/pong/internal/adapters/http/api"
	"github.com/okian/pong/internal/adapters/http/mcptools"
	"github.com/okian/pong/internal/adapters/http/swagger"
	"github.com/okian/pong/internal/adapters/persistence"
	app "github.com/okian/pong/internal/app"
	"github.com/okian/pong/internal/config"
	"github.com/okian/pong/pkg/logger"
	"github.com/okian/pong/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

var version = "dev"

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		// The logger may not be initialized yet.
		os.Stderr.WriteString("pong: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	primary, err := persistence.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeBackend(ctx, log, primary)

	var mirror persistence.Persister
	if cfg.Mirror.Backend != config.BackendNone {
		mirror, err = persistence.New(ctx, cfg.Mirror.Storage)
		if err != nil {
			return fmt.Errorf("open mirror: %w", err)
		}
		defer closeBackend(ctx, log, mirror)
	}

	svc := app.New(serviceOptions(cfg, log, primary, mirror)...)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	// Stop drains the mirror, so it has to run before the backends close.
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, log, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("storage", primary.Name()),
			logger.Bool("mirror", mirror != nil),
			logger.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		runMetricsUpdater(gctx, svc, metrics.RefreshInterval())
		return nil
	})

	err = g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

func serviceOptions(cfg *config.Config, log logger.Logger, primary, mirror persistence.Persister) []app.Option {
	opts := []app.Option{
		app.WithLogger(log),
		app.WithPersister(primary),
		app.WithIdempotencySize(cfg.IdempotencySize),
		app.WithSeed(cfg.Engine.Seed),
		app.WithPointsPolicy(cfg.Engine.PointsWin, cfg.Engine.PointsDraw, cfg.Engine.PointsLoss),
		app.WithDefaultMaxScore(cfg.Engine.MaxScore),
	}
	if mirror != nil {
		opts = append(opts,
			app.WithMirror(mirror),
			app.WithMirrorWorkers(cfg.Mirror.Workers),
			app.WithMirrorQueueSize(cfg.Mirror.QueueSize),
			app.WithMirrorRetry(cfg.Mirror.Retries, cfg.Mirror.RetryBackoff),
		)
	}
	return opts
}

// newHandler serves the API docs next to the tournament API, with the MCP
// tools mounted into the API router when enabled.
func newHandler(ctx context.Context, cfg *config.Config, log logger.Logger, svc *app.Service) http.Handler {
	opts := []api.Option{
		api.WithLogger(log.Named("api")),
		api.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		api.WithAllowedOrigins(cfg.CORS.AllowedOrigins...),
	}
	if cfg.MCP.Enabled {
		opts = append(opts, api.WithMount(cfg.MCP.Path,
			mcptools.Handler(svc, mcptools.WithLogger(log.Named("mcp")), mcptools.WithVersion(version))))
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	mux.Handle("/", api.NewServer(svc, svc, opts...).Routes())
	return mux
}

func closeBackend(ctx context.Context, log logger.Logger, p persistence.Persister) {
	if err := p.Close(); err != nil {
		log.Warn(ctx, "failed to close storage backend", logger.String("backend", p.Name()), logger.Error(err))
	}
}

// runMetricsUpdater refreshes the gauges that are sampled rather than counted.
func runMetricsUpdater(ctx context.Context, svc *app.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateMetrics(svc)
		}
	}
}

func updateMetrics(svc *app.Service) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	// GetStats refreshes the mirror queue gauge as a side effect.
	_ = svc.GetStats()
}
