package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-hrflow/internal/config"
	"go-hrflow/internal/directory"
	"go-hrflow/internal/duration"
	"go-hrflow/internal/messaging/kafka"
	"go-hrflow/internal/messaging/kafka/producer"
	"go-hrflow/internal/probation"
	"go-hrflow/internal/shared/connection"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunWorker relays the outbox to Kafka and runs the probation sweep.
func RunWorker(cfg config.Config) error {
	logger := zap.L().Named("app.worker")

	if err := cfg.RequireKafka(); err != nil {
		return err
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Postgres, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, cfg.ConnectRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	table, err := duration.LoadProbationTable(cfg.ProbationConfigPath)
	if err != nil {
		return err
	}

	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	// only ListOnProbation is used here
	directoryService := directory.NewService(directory.NewRepository(gormDB), nil, nil)
	sweeper := probation.NewSweeper(probation.NewService(directoryService, table), outboxRepo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, cfg.OutboxPollInterval)
		return nil
	})
	g.Go(func() error {
		return sweeper.Run(ctx, cfg.ProbationSweepCron)
	})

	err = g.Wait()
	logger.Info("worker shutting down")
	return err
}
