// Command fileparser starts the ingestion trigger.
//
// The service subscribes to object-created notifications for the inbound
// prefix, streams each uploaded CSV through an incremental decoder, and
// publishes one message per row to the catalog-items topic under a bounded
// publish fan-out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/catalogops/import-pipeline/internal/fileparser"
	"github.com/catalogops/import-pipeline/pkg/config"
	"github.com/catalogops/import-pipeline/pkg/kafka"
	"github.com/catalogops/import-pipeline/pkg/logger"
	"github.com/catalogops/import-pipeline/pkg/metrics"
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
	slog.Info("starting file parser",
		"bucket", cfg.Storage.Bucket,
		"prefix", cfg.Storage.UploadPrefix,
	)

	store, err := storage.New(cfg.Storage)
	if err != nil {
		slog.Error("failed to create storage client", "error", err)
		os.Exit(1)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.CatalogItems)
	defer producer.Close()
	slog.Info("kafka producer initialized", "topic", cfg.Kafka.Topics.CatalogItems)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		stopMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer stopMetrics(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	processor := fileparser.NewProcessor(
		store,
		fileparser.NewQueuePublisher(producer),
		cfg.Parser.PublishConcurrency,
		cfg.Parser.ObjectTimeout,
		m,
	)

	events := store.Listen(ctx, cfg.Storage.UploadPrefix)
	if err := processor.Run(ctx, events); err != nil {
		slog.Error("processor error", "error", err)
	}

	slog.Info("file parser stopped")
}
