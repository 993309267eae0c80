// Command catalogbatch starts the batch consumer.
//
// The service drains the catalog-items topic in bounded batches, validates
// and persists each record to PostgreSQL (products + stocks), and publishes
// one completion notification per batch with at least one persisted record.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/catalogops/import-pipeline/internal/catalogbatch"
	"github.com/catalogops/import-pipeline/internal/catalogbatch/store"
	"github.com/catalogops/import-pipeline/pkg/config"
	"github.com/catalogops/import-pipeline/pkg/kafka"
	"github.com/catalogops/import-pipeline/pkg/logger"
	"github.com/catalogops/import-pipeline/pkg/metrics"
	"github.com/catalogops/import-pipeline/pkg/postgres"
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
	slog.Info("starting catalog batch consumer", "batch_size", cfg.Consumer.BatchSize)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to postgres")

	notifyProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.ImportComplete)
	defer notifyProducer.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		stopMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer stopMetrics(context.Background())
	}

	processor := catalogbatch.NewProcessor(
		store.New(db),
		catalogbatch.NewTopicNotifier(notifyProducer),
		m,
	)

	consumer := kafka.NewBatchConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.CatalogItems,
		cfg.Consumer.BatchSize,
		cfg.Consumer.PollWait,
		processor.Handler(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("consuming from kafka",
		"topic", cfg.Kafka.Topics.CatalogItems,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
	}

	slog.Info("catalog batch consumer stopped")
}
