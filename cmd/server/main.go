package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/medeinalab/stock-query-service/internal/api"
	"github.com/medeinalab/stock-query-service/internal/cache"
	"github.com/medeinalab/stock-query-service/internal/config"
	"github.com/medeinalab/stock-query-service/internal/firestore"
	"github.com/medeinalab/stock-query-service/internal/observability"
	"github.com/medeinalab/stock-query-service/internal/orchestrator"
	"github.com/medeinalab/stock-query-service/internal/resilience"
	"github.com/medeinalab/stock-query-service/internal/snapshot"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting stock query service",
		zap.String("service", cfg.Observability.ServiceName),
	)

	tracerShutdown, err := observability.InitTracer(cfg.Observability.ServiceName)
	if err != nil {
		logger.Warn("tracing initialization failed, continuing without tracing", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	responseCache := cache.NewResponseCache(cfg.Redis, logger)
	defer responseCache.Close()
	logger.Info("response cache initialized")

	fsClient, err := firestore.NewClient(ctx, cfg.Firestore, logger)
	if err != nil {
		return fmt.Errorf("initializing firestore: %w", err)
	}
	defer fsClient.Close()
	logger.Info("firestore client initialized", zap.String("collection", cfg.Firestore.Collection))

	breaker := resilience.NewCircuitBreaker("firestore-source", cfg.Snapshot.CircuitBreaker, logger)
	store := snapshot.NewStore(fsClient, cfg.Snapshot.TTL, cfg.Search.FuzzyThreshold, breaker, logger)

	// Warm the snapshot so the first query does not pay the full-table fetch.
	// Failure here is not fatal; the next query retries.
	warmCtx, warmCancel := context.WithTimeout(ctx, cfg.Firestore.RequestTimeout)
	if _, err := store.Ensure(warmCtx, false); err != nil {
		logger.Warn("initial snapshot load failed", zap.Error(err))
	}
	warmCancel()

	slowQueryDetector := observability.NewSlowQueryDetector(
		cfg.Search.SlowQuery.WarningThreshold,
		cfg.Search.SlowQuery.CriticalThreshold,
		logger,
	)

	orch := orchestrator.New(
		store, responseCache, orchestrator.NewResolver(cfg.Search.MaxFuzzyHits),
		slowQueryDetector, cfg, logger,
	)

	handler := api.NewHandler(orch, logger)

	healthHandler := api.NewHealthHandler(logger)
	healthHandler.Register("redis", responseCache)
	healthHandler.Register("firestore", fsClient)
	healthHandler.RegisterSnapshot(orch)

	router := api.NewRouter(handler, healthHandler, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		return err
	}

	logger.Info("starting graceful shutdown", zap.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	cancel()

	if tracerShutdown != nil {
		if err := tracerShutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown error", zap.Error(err))
		}
	}

	logger.Info("shutdown complete")
	return nil
}
