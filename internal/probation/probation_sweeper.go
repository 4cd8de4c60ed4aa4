package probation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-hrflow/internal/duration"
	"go-hrflow/internal/events"
	"go-hrflow/internal/messaging/kafka"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// sweepNamespace seeds deterministic outbox ids so a day's sweep is
// written at most once per employee.
var sweepNamespace = uuid.MustParse("5c1d3f0e-8f9a-4b6a-9a57-2f7c0b7f6a11")

type Sweeper struct {
	service Service
	outbox  kafka.OutboxRepository
	now     func() time.Time
	logger  *zap.Logger
}

func NewSweeper(service Service, outbox kafka.OutboxRepository, logger ...*zap.Logger) *Sweeper {
	l := zap.L().Named("probation.sweeper")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("probation.sweeper")
	}
	return &Sweeper{service: service, outbox: outbox, now: time.Now, logger: l}
}

func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Sweep queues an urgency event for every window at warning or critical and
// returns how many were newly queued.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	windows, err := s.service.ListWindows(ctx, "")
	if err != nil {
		s.logger.Error("probation sweep: list windows failed", zap.Error(err))
		return 0, err
	}

	today := duration.Normalize(s.now()).Format(dateLayout)
	queued := 0
	for _, w := range windows {
		level := duration.Urgency(w.UrgencyLevel)
		if level != duration.UrgencyCritical && level != duration.UrgencyWarning {
			continue
		}

		payload, err := json.Marshal(events.ProbationUrgencyEvent{
			EventType:     events.ProbationUrgencyType,
			CompanyID:     w.CompanyID,
			EmployeeID:    w.EmployeeID,
			EmployeeName:  w.EmployeeName,
			ManagerID:     w.ManagerID,
			EndDate:       w.EndDate,
			DaysRemaining: w.DaysRemaining,
			UrgencyLevel:  w.UrgencyLevel,
			OccurredAt:    s.now().UTC(),
		})
		if err != nil {
			return queued, fmt.Errorf("marshal probation urgency event: %w", err)
		}

		created, err := s.outbox.CreateIfAbsent(ctx, kafka.OutboxEvent{
			ID:            SweepEventID(w.EmployeeID, today).String(),
			AggregateType: kafka.AggregateEmployee,
			AggregateID:   w.EmployeeID,
			EventType:     events.ProbationUrgencyType,
			Topic:         events.ProbationUrgencyTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		})
		if err != nil {
			s.logger.Error("probation sweep: enqueue failed",
				zap.String("employee_id", w.EmployeeID),
				zap.Error(err),
			)
			return queued, err
		}
		if created {
			queued++
		}
	}

	s.logger.Info("probation sweep finished",
		zap.Int("windows", len(windows)),
		zap.Int("queued", queued),
	)
	return queued, nil
}

func SweepEventID(employeeID, date string) uuid.UUID {
	return uuid.NewSHA1(sweepNamespace, []byte(employeeID+":"+date))
}

// Run sweeps on the cron schedule until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(spec, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Warn("probation sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid probation sweep schedule %q: %w", spec, err)
	}

	s.logger.Info("probation sweeper started", zap.String("schedule", spec))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("probation sweeper stopped")
	return nil
}
