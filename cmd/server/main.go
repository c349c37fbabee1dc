package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vanshika/soltrace/internal/cache"
	"github.com/vanshika/soltrace/internal/config"
	"github.com/vanshika/soltrace/internal/logging"
	"github.com/vanshika/soltrace/internal/metrics"
	"github.com/vanshika/soltrace/internal/server"
	"github.com/vanshika/soltrace/internal/service"
	"github.com/vanshika/soltrace/internal/solana"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	var registry *prometheus.Registry
	var m *metrics.Metrics
	if cfg.HTTP.MetricsEnabled {
		registry = prometheus.NewRegistry()
		m = metrics.New(registry)
	}

	client, store, err := buildRPCClient(cfg, logger, m)
	if err != nil {
		logger.Error("failed to create rpc client", "error", err)
		os.Exit(1)
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing cache failed", "error", err)
			}
		}()
	}

	traceService := service.NewTraceService(client, logger, m, service.Options{
		HistoryPageSize: cfg.RPC.PageSize,
		HistoryMaxPages: cfg.RPC.MaxPages,
		FetchWorkers:    cfg.Trace.FetchWorkers,
		MaxDepth:        cfg.Trace.MaxDepth,
	})
	apiHandlers := server.NewAPIHandlers(logger, traceService)

	deps := server.RouterDependencies{
		Health:           server.RPCHealthService{Client: client},
		API:              apiHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	}
	if registry != nil {
		deps.Metrics = registry
	}

	router := server.NewRouter(logger, deps)
	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildRPCClient(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) (solana.Client, *cache.Store, error) {
	if cfg.RPC.EndpointDefaulted {
		logger.Warn("SOLANA_RPC_ENDPOINT not set, using default endpoint", "endpoint", cfg.RPC.Endpoint)
	}

	opts := solana.Options{
		Endpoint:  cfg.RPC.Endpoint,
		Timeout:   cfg.RPC.Timeout,
		RateLimit: cfg.RPC.RateLimit,
	}
	if m != nil {
		opts.Observer = m
	}
	var client solana.Client = solana.NewHTTPClient(opts)

	if !cfg.Cache.Enabled {
		return client, nil, nil
	}

	store, err := cache.Open(cache.Options{
		Path:     cfg.Cache.Path,
		InMemory: cfg.Cache.InMemory,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open cache: %w", err)
	}

	return cache.WrapClient(client, store, logger, m), store, nil
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
