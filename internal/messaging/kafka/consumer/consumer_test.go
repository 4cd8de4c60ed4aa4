package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go-hrflow/internal/events"
	"go-hrflow/internal/messaging/kafka/consumer"
	"go-hrflow/internal/notification"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeReader serves queued messages, then blocks until ctx is cancelled.
type fakeReader struct {
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type fakeDispatcher struct {
	err  error
	sent []notification.Notification
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, n notification.Notification) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, n)
	return nil
}

func message(t *testing.T, offset int64, v any) kafkago.Message {
	t.Helper()
	b, err := json.Marshal(v)
	assert.NoError(t, err)
	return kafkago.Message{Topic: events.ApprovalTransitionedTopic, Offset: offset, Value: b}
}

func TestConsumeApprovalTransitions(t *testing.T) {
	pending := events.ApprovalTransitionedEvent{
		EventType:     events.ApprovalTransitionedType,
		Status:        "PENDING",
		Action:        "SUBMIT",
		PendingRoles:  []string{"LINE_MANAGER"},
		LineManagerID: "mgr-1",
	}
	edit := pending
	edit.Action = "EDIT"

	t.Run("success dispatches and commits", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
			message(t, 1, pending),
			{Offset: 2, Value: []byte("{not json")},
			message(t, 3, edit),
		}}
		dispatcher := &fakeDispatcher{}

		consumer.ConsumeApprovalTransitions(ctx, reader, dispatcher, zap.NewNop())

		assert.Len(t, dispatcher.sent, 1)
		assert.Equal(t, []string{"mgr-1"}, dispatcher.sent[0].RecipientIDs)
		assert.Equal(t, []int64{1, 2, 3}, reader.committed)
	})

	t.Run("negative dispatch failure leaves offset uncommitted", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{message(t, 7, pending)}}

		consumer.ConsumeApprovalTransitions(ctx, reader, &fakeDispatcher{err: errors.New("smtp down")}, zap.NewNop())

		assert.Empty(t, reader.committed)
	})
}

func TestConsumeProbationUrgency(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{message(t, 4, events.ProbationUrgencyEvent{
		EventType:     events.ProbationUrgencyType,
		EmployeeID:    "emp-7",
		EmployeeName:  "Dana Smith",
		ManagerID:     "mgr-1",
		DaysRemaining: 12,
		UrgencyLevel:  "warning",
	})}}
	dispatcher := &fakeDispatcher{}

	consumer.ConsumeProbationUrgency(ctx, reader, dispatcher, zap.NewNop())

	assert.Len(t, dispatcher.sent, 1)
	assert.Equal(t, []string{"HR"}, dispatcher.sent[0].RecipientRoles)
	assert.Equal(t, []int64{4}, reader.committed)
}
