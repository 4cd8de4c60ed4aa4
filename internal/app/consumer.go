package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go-hrflow/internal/config"
	"go-hrflow/internal/events"
	"go-hrflow/internal/messaging/kafka/consumer"
	"go-hrflow/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const consumerGroup = "go-hrflow-notifications"

// RunConsumer turns approval and probation events into notifications.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	if err := cfg.RequireKafka(); err != nil {
		return err
	}

	newReader := func(topic string) *kafkago.Reader {
		return kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:        []string{cfg.KafkaBroker},
			Topic:          topic,
			GroupID:        consumerGroup,
			CommitInterval: 0,
			StartOffset:    kafkago.FirstOffset,
		})
	}
	transitions := newReader(events.ApprovalTransitionedTopic)
	defer transitions.Close()
	urgency := newReader(events.ProbationUrgencyTopic)
	defer urgency.Close()

	dispatcher := notification.NewLogDispatcher(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumeApprovalTransitions(ctx, transitions, dispatcher, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumeProbationUrgency(ctx, urgency, dispatcher, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	wg.Wait()

	return nil
}
