package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/traderheat/internal/adapters/http/api"
	"github.com/okian/traderheat/internal/adapters/http/site"
	"github.com/okian/traderheat/internal/adapters/http/swagger"
	"github.com/okian/traderheat/internal/adapters/source"
	app "github.com/okian/traderheat/internal/app"
	"github.com/okian/traderheat/internal/config"
	"github.com/okian/traderheat/pkg/logger"
	"github.com/okian/traderheat/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	opts, err := app.ConfigOptions(cfg)
	if err != nil {
		loggerInstance.Fatal(ctx, "invalid configuration", logger.Error(err))
	}
	svc, err := app.New(append(opts, app.WithLogger(loggerInstance.Named("service")))...)
	if err != nil {
		loggerInstance.Fatal(ctx, "failed to create service", logger.Error(err))
	}

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx, metrics.Default().RefreshInterval())

	mux := buildMux(ctx, cfg, svc, loggerInstance)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("mode", cfg.Mode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildMux registers the docs, API and site routes.
func buildMux(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc,
		api.WithMaxUploadBytes(cfg.MaxUploadBytes),
		api.WithRateLimit(cfg.UploadRPS, cfg.UploadBurst),
	)
	apiServer.Register(ctx, mux)

	siteOpts := []site.Option{
		site.WithMaxUploadBytes(cfg.MaxUploadBytes),
		site.WithRateLimiter(apiServer.Limiter()),
	}
	if cfg.Mode == config.ModeDiscover {
		siteOpts = append(siteOpts, site.WithDiscovery(source.NewLatest(cfg.DownloadsDir, cfg.FilePattern, cfg.MaxUploadBytes)))
		log.Info(ctx, "auto-discovery enabled",
			logger.String("dir", cfg.DownloadsDir),
			logger.String("pattern", cfg.FilePattern),
		)
	}
	site.Register(ctx, mux, site.NewHandler(svc, siteOpts...))
	return mux
}

// startSystemMetricsUpdater refreshes the process gauges until ctx is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
