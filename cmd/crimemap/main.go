package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aaroncolesmith/portland-crime-map/internal/adapter/archive"
	"github.com/aaroncolesmith/portland-crime-map/internal/adapter/feed"
	httpadapter "github.com/aaroncolesmith/portland-crime-map/internal/adapter/http"
	kafkaadapter "github.com/aaroncolesmith/portland-crime-map/internal/adapter/kafka"
	"github.com/aaroncolesmith/portland-crime-map/internal/config"
	"github.com/aaroncolesmith/portland-crime-map/internal/observability"
	"github.com/aaroncolesmith/portland-crime-map/internal/pipeline"
)

func main() {
	// Local development convenience; the file is absent in deployment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	archiveClient := archive.NewClient(cfg.ArchiveURL, cfg.FetchTimeout, logger)
	feedClient := feed.NewClient(cfg.FeedURL, cfg.FetchTimeout, logger)

	// Snapshot export is feature-flagged via PCM_KAFKA_ENABLED.
	var exporter pipeline.SnapshotExporter
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		exporter = kafkaWriter
		logger.Info("kafka snapshot export enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka snapshot export disabled")
	}

	cache := pipeline.NewCache(cfg.CacheTTL, nil)
	refresher := pipeline.New(archiveClient, feedClient, exporter, cache, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, cfg.DefaultLookbackDays, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the cache so the first request and the readiness probe do not
	// pay the fetch latency.
	go func() {
		if _, err := refresher.Incidents(ctx, cfg.DefaultLookbackDays); err != nil {
			logger.Error("initial refresh failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
