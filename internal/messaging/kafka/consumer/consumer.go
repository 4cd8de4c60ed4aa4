package consumer

import (
	"context"
	"encoding/json"

	"go-hrflow/internal/events"
	"go-hrflow/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *kafkago.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func ConsumeApprovalTransitions(
	ctx context.Context,
	reader MessageReader,
	dispatcher notification.Dispatcher,
	logger *zap.Logger,
) {
	consume(ctx, reader, logger.Named("kafka.consumer.approval_transitions"), func(msg kafkago.Message) (notification.Notification, bool, error) {
		var event events.ApprovalTransitionedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return notification.Notification{}, false, err
		}
		n, ok := notification.FromApprovalTransition(event)
		return n, ok, nil
	}, dispatcher)
}

func ConsumeProbationUrgency(
	ctx context.Context,
	reader MessageReader,
	dispatcher notification.Dispatcher,
	logger *zap.Logger,
) {
	consume(ctx, reader, logger.Named("kafka.consumer.probation_urgency"), func(msg kafkago.Message) (notification.Notification, bool, error) {
		var event events.ProbationUrgencyEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return notification.Notification{}, false, err
		}
		n, ok := notification.FromProbationUrgency(event)
		return n, ok, nil
	}, dispatcher)
}

type buildFunc func(msg kafkago.Message) (notification.Notification, bool, error)

// consume commits undecodable messages and messages nobody needs to hear
// about. A failed dispatch leaves the offset uncommitted.
func consume(
	ctx context.Context,
	reader MessageReader,
	log *zap.Logger,
	build buildFunc,
	dispatcher notification.Dispatcher,
) {
	log.Info("consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("consumer stopped")
				return
			}
			log.Error("fetch message failed", zap.Error(err))
			continue
		}

		msgLog := log.With(
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.String("key", string(msg.Key)),
			zap.String("request_id", header(msg, "request_id")),
		)

		n, ok, err := build(msg)
		if err != nil {
			msgLog.Error("decode event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if ok {
			if err := dispatcher.Dispatch(ctx, n); err != nil {
				msgLog.Error("dispatch notification failed", zap.Error(err))
				continue
			}
		} else {
			msgLog.Debug("event has no recipients, skipping")
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			msgLog.Error("commit message failed", zap.Error(err))
			continue
		}

		msgLog.Info("event handled", zap.Bool("dispatched", ok))
	}
}

func header(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
