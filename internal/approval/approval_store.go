package approval

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	approvalerrors "go-hrflow/internal/approval/errors"
	"go-hrflow/internal/events"
	"go-hrflow/internal/messaging/kafka"
	"go-hrflow/internal/shared/contextutil"
	"go-hrflow/internal/workflow"
	workflowerrors "go-hrflow/internal/workflow/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store persists workflow transitions. The request update, the event row and
// the outbox message are written in one transaction.
type Store struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	now    func() time.Time
	logger *zap.Logger
}

var _ workflow.Store = (*Store)(nil)

func NewStore(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) *Store {
	l := zap.L().Named("approval.store")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.store")
	}
	return &Store{db: db, repo: repo, outbox: outbox, now: time.Now, logger: l}
}

func (s *Store) Load(ctx context.Context, tenant, id string) (workflow.Snapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return workflow.Snapshot{}, workflowerrors.ErrRequestNotFound
	}

	row, err := s.repo.FindByIDAndCompany(ctx, tenant, id)
	if err != nil {
		if errors.Is(mapRepositoryError(err), approvalerrors.ErrApprovalNotFound) {
			return workflow.Snapshot{}, workflowerrors.ErrRequestNotFound
		}
		s.logger.Error("load approval failed", zap.String("approval_id", id), zap.Error(err))
		return workflow.Snapshot{}, err
	}
	req, err := toDomain(*row)
	if err != nil {
		return workflow.Snapshot{}, err
	}

	snap := workflow.Snapshot{Request: req, NextSeq: 1}
	last, err := s.repo.LastEvent(ctx, tenant, id)
	if err != nil {
		s.logger.Error("load approval trail head failed", zap.String("approval_id", id), zap.Error(err))
		return workflow.Snapshot{}, err
	}
	if last != nil {
		snap.LastHash = last.Hash
		snap.NextSeq = last.Seq + 1
	}
	return snap, nil
}

func (s *Store) Commit(ctx context.Context, c workflow.Commit) error {
	companyID, err := uuid.Parse(c.Tenant)
	if err != nil {
		return approvalerrors.ErrInvalidCompanyID
	}
	requestID, err := uuid.Parse(c.After.ID)
	if err != nil {
		return workflowerrors.ErrRequestNotFound
	}

	columns, err := stateColumns(c.After, s.now().UTC())
	if err != nil {
		return err
	}
	payload, err := json.Marshal(transitionedEvent(ctx, c))
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("commit transition begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	updated, err := qtx.UpdateState(ctx, c.Tenant, c.After.ID, c.Before.Version, columns)
	if err != nil {
		s.logger.Error("commit transition update failed", zap.String("approval_id", c.After.ID), zap.Error(err))
		return err
	}
	if !updated {
		return s.conflict(ctx, qtx, c)
	}

	row := toEventRow(companyID, requestID, c.Event)
	if err := qtx.AppendEvent(ctx, &row); err != nil {
		if isUniqueViolation(err) {
			return s.conflict(ctx, qtx, c)
		}
		s.logger.Error("commit transition append event failed", zap.String("approval_id", c.After.ID), zap.Error(err))
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: kafka.AggregateApproval,
		AggregateID:   c.After.ID,
		EventType:     events.ApprovalTransitionedType,
		Topic:         events.ApprovalTransitionedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("commit transition outbox failed", zap.String("approval_id", c.After.ID), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit transition commit failed", zap.String("approval_id", c.After.ID), zap.Error(err))
		return err
	}
	return nil
}

// conflict reports a lost race with the version that won it.
func (s *Store) conflict(ctx context.Context, qtx Repository, c workflow.Commit) error {
	actual := c.Before.Version
	if current, err := qtx.FindByIDAndCompany(ctx, c.Tenant, c.After.ID); err == nil {
		actual = current.Version
	}
	s.logger.Warn("concurrent modification",
		zap.String("approval_id", c.After.ID),
		zap.Int64("expected_version", c.Before.Version),
		zap.Int64("actual_version", actual),
	)
	return workflowerrors.ConcurrentModification(c.Before.Version, actual)
}

func transitionedEvent(ctx context.Context, c workflow.Commit) events.ApprovalTransitionedEvent {
	req, ev := c.After, c.Event
	pending := workflow.PendingRoles(req)
	roles := make([]string, len(pending))
	for i, r := range pending {
		roles[i] = string(r)
	}
	return events.ApprovalTransitionedEvent{
		EventType:     events.ApprovalTransitionedType,
		RequestID:     contextutil.GetRequestID(ctx),
		CompanyID:     c.Tenant,
		ApprovalID:    req.ID,
		Reference:     req.Reference,
		Kind:          string(req.Kind),
		Action:        string(ev.Action),
		ActorID:       ev.ActorID,
		ActorRole:     string(ev.ActorRole),
		Comment:       ev.Comment,
		Status:        string(req.State.Status),
		StatusLabel:   workflow.Label(req),
		StageIndex:    ev.StageIndex,
		PendingRoles:  roles,
		SubjectID:     req.SubjectID,
		RequesterID:   req.RequesterID,
		LineManagerID: req.LineManagerID,
		Seq:           ev.Seq,
		Hash:          ev.Hash,
		OccurredAt:    ev.Timestamp,
	}
}
