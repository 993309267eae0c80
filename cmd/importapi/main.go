// Command importapi starts the catalog import front door.
//
// The service issues time-limited presigned upload grants via GET /import,
// protected by the Basic-credential authorization gate and a Redis-backed
// per-principal rate limit. Health probes live under /health.
//
// Usage:
//
//	go run ./cmd/importapi [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/catalogops/import-pipeline/internal/auth/basicauth"
	"github.com/catalogops/import-pipeline/internal/auth/ratelimit"
	"github.com/catalogops/import-pipeline/internal/importapi/handler"
	"github.com/catalogops/import-pipeline/internal/importapi/issuer"
	"github.com/catalogops/import-pipeline/internal/importapi/router"
	"github.com/catalogops/import-pipeline/pkg/config"
	"github.com/catalogops/import-pipeline/pkg/health"
	"github.com/catalogops/import-pipeline/pkg/logger"
	"github.com/catalogops/import-pipeline/pkg/metrics"
	"github.com/catalogops/import-pipeline/pkg/redis"
	"github.com/catalogops/import-pipeline/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting import api", "port", cfg.Server.Port)

	store, err := storage.New(cfg.Storage)
	if err != nil {
		slog.Error("failed to create storage client", "error", err)
		os.Exit(1)
	}

	rdb, err := redis.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		stopMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer stopMetrics(context.Background())
	}

	gate := basicauth.NewGate(cfg.Auth.Credentials)
	limiter := ratelimit.New(rdb, cfg.Auth.RateLimit, cfg.Auth.RateLimitWindow)
	iss := issuer.New(store, cfg.Storage.UploadPrefix, cfg.Storage.UploadContentType, cfg.Storage.GrantTTL)
	h := handler.New(iss, m)

	checker := health.NewChecker()
	checker.Register("redis", health.CheckPing(rdb.Ping))
	checker.Register("storage", health.CheckPing(store.Ping))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.New(h, gate, limiter, checker, m, cfg.Server.RequestTimeout),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()
	slog.Info("import api listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("import api stopped")
}
