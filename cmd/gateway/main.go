// Package main is the entry point for the DEX trading gateway.
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

	"github.com/joho/godotenv"

	"github.com/cardex/gateway/business/gateway"
	"github.com/cardex/gateway/internal/apm"
	"github.com/cardex/gateway/internal/config"
	"github.com/cardex/gateway/internal/logger"
	"github.com/cardex/gateway/internal/metrics"
	"github.com/cardex/gateway/internal/monolith"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("cardex-gateway %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name)
	log.Info(ctx, "starting gateway",
		"version", version,
		"environment", cfg.App.Environment,
		"default_network", cfg.Cardano.DefaultNetwork,
	)

	// Observability
	if cfg.Telemetry.Enabled {
		traceProvider, err := apm.NewTraceProvider(ctx, apm.Options{
			ServiceName:  cfg.Telemetry.ServiceName,
			Exporter:     apm.Exporter(cfg.Telemetry.TraceExporter),
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			ZipkinURL:    cfg.Telemetry.ZipkinURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer traceProvider.Stop()
		log.Info(ctx, "tracing initialized", "exporter", cfg.Telemetry.TraceExporter)

		metricProvider, err := metrics.NewProvider(cfg.Telemetry.ServiceName)
		if err != nil {
			return fmt.Errorf("failed to initialize metrics: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricProvider.Shutdown(shutdownCtx)
		}()

		go func() {
			if err := metrics.Serve(ctx, cfg.Telemetry.PrometheusPort); err != nil {
				log.Warn(ctx, "metrics server stopped", "error", err)
			}
		}()
		log.Info(ctx, "prometheus metrics server started", "port", cfg.Telemetry.PrometheusPort)
	}

	// Assemble the monolith and its modules
	mono := monolith.New(cfg, log, version)
	defer mono.Close()

	modules := []monolith.Module{
		&gateway.Module{},
	}
	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}
	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	// Health endpoints
	mux := http.NewServeMux()
	mono.Health().Mount(mux)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "health server listening", "port", cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn(shutdownCtx, "server shutdown failed", "error", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}
