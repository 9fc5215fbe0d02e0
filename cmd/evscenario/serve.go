package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/ev-scenario-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/ev-scenario-etl/internal/adapter/kafka"
	"github.com/couchcryptid/ev-scenario-etl/internal/observability"
	"github.com/couchcryptid/ev-scenario-etl/internal/pipeline"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API with health, readiness and metrics endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $HTTP_ADDR)")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions, addr string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.HTTPAddr = addr
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	catalog, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	logger.Info("source catalog loaded", "path", cfg.SourceCatalog, "years", catalog.Years)

	// Result publishing is feature-flagged via KAFKA_PUBLISH_ENABLED.
	var publisher pipeline.ResultPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaPublishEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("scenario result publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("scenario result publishing disabled")
	}

	svc := pipeline.New(catalog, publisher, logger, metrics)
	if err := svc.CheckReadiness(ctx); err != nil {
		logger.Warn("source files missing at startup", "error", err)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
		logger.Error("http server error", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return serveErr
}
