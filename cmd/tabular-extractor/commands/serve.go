package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spherical/tabular-extractor/internal/api"
	"github.com/spherical/tabular-extractor/internal/api/handlers"
	"github.com/spherical/tabular-extractor/internal/observability"
	"github.com/spherical/tabular-extractor/internal/present"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and JSON API",
	Long:  "Start the HTTP server that hosts the upload page, the extraction API, health checks and Prometheus metrics.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(cfg, os.Stderr)
	metrics := observability.NewMetrics()

	svc, closeOCR, err := buildService(cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer closeOCR()

	renderer, err := present.NewRenderer()
	if err != nil {
		return err
	}

	extractHandler := handlers.NewExtractHandler(logger, svc, renderer, handlers.UploadLimits{
		AllowedExtensions: cfg.Ingest.AllowedExtensions,
		MaxBytes:          cfg.Ingest.MaxUploadBytes,
	})
	router := api.NewRouter(logger, metrics, extractHandler, api.RouterConfig{
		RequestTimeout:    cfg.Server.RequestTimeout,
		MaxConcurrentJobs: cfg.Server.MaxConcurrentJobs,
		JobBacklog:        cfg.Server.JobBacklog,
		ServiceName:       cfg.Observability.ServiceName,
	})

	addr := cfg.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info().
		Str("addr", addr).
		Int("max_concurrent_jobs", cfg.Server.MaxConcurrentJobs).
		Bool("strict_kind", cfg.Ingest.StrictKind).
		Msg("Starting tabular-extractor")

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Msgf("HTTP server listening on %s", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt or error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
	return nil
}
