package workflow

import (
	"context"
	"strings"
	"time"

	workflowerrors "go-hrflow/internal/workflow/errors"

	"go.uber.org/zap"
)

// Snapshot is a request as loaded for a transition, together with the head
// of its event chain.
type Snapshot struct {
	Request  Request
	LastHash string
	NextSeq  int
}

// Commit is one accepted transition. Implementations must persist After and
// Event atomically, and only if the stored version still equals
// Before.Version; otherwise they return a ConcurrentModification error.
type Commit struct {
	Tenant string
	Before Request
	After  Request
	Event  Event
}

type Store interface {
	Load(ctx context.Context, tenant, id string) (Snapshot, error)
	Commit(ctx context.Context, c Commit) error
}

// Directory resolves who an actor is within a tenant.
type Directory interface {
	ResolveActor(ctx context.Context, tenant, actorID string) (Actor, error)
}

// Notifier is told about committed transitions. Failures are logged only.
type Notifier interface {
	Transitioned(ctx context.Context, req Request, ev Event) error
}

type Command struct {
	Tenant    string
	RequestID string
	ActorID   string
	Comment   string
	// ExpectedVersion, when set, must match the stored version.
	ExpectedVersion *int64
}

// Mutator edits the mutable fields of a request in place.
type Mutator func(req *Request) error

type Engine struct {
	store    Store
	dir      Directory
	notifier Notifier
	locks    *KeyedMutex
	now      func() time.Time
	logger   *zap.Logger
}

type Option func(*Engine)

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(store Store, dir Directory, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		dir:    dir,
		locks:  NewKeyedMutex(),
		now:    time.Now,
		logger: zap.L().Named("workflow.engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Submit(ctx context.Context, cmd Command) (Decision, error) {
	return e.transition(ctx, cmd, ActionSubmit, nil)
}

func (e *Engine) Approve(ctx context.Context, cmd Command) (Decision, error) {
	return e.transition(ctx, cmd, ActionApprove, nil)
}

func (e *Engine) Reject(ctx context.Context, cmd Command) (Decision, error) {
	return e.transition(ctx, cmd, ActionReject, nil)
}

func (e *Engine) RequestClarification(ctx context.Context, cmd Command) (Decision, error) {
	return e.transition(ctx, cmd, ActionRequestClarification, nil)
}

func (e *Engine) Resubmit(ctx context.Context, cmd Command) (Decision, error) {
	return e.transition(ctx, cmd, ActionResubmit, nil)
}

func (e *Engine) Cancel(ctx context.Context, cmd Command) (Decision, error) {
	return e.transition(ctx, cmd, ActionCancel, nil)
}

// Edit applies mutate to a draft or a request under clarification. Schedules
// are limited to MaxAllowedEdits edits.
func (e *Engine) Edit(ctx context.Context, cmd Command, mutate Mutator) (Decision, error) {
	return e.transition(ctx, cmd, ActionEdit, mutate)
}

func (e *Engine) transition(ctx context.Context, cmd Command, action Action, mutate Mutator) (Decision, error) {
	log := e.logger.With(
		zap.String("request_id", cmd.RequestID),
		zap.String("actor_id", cmd.ActorID),
		zap.String("action", string(action)),
	)
	log.Debug("transition requested")

	unlock := e.locks.Lock(cmd.Tenant + "/" + cmd.RequestID)
	defer unlock()

	snap, err := e.store.Load(ctx, cmd.Tenant, cmd.RequestID)
	if err != nil {
		return Decision{}, err
	}
	before := snap.Request

	actor, err := e.dir.ResolveActor(ctx, cmd.Tenant, cmd.ActorID)
	if err != nil {
		return Decision{}, err
	}

	if cmd.ExpectedVersion != nil && *cmd.ExpectedVersion != before.Version {
		if !Involved(actor, before) {
			log.Warn("stale version from uninvolved actor")
			return Decision{}, workflowerrors.Unauthorized(Permission(action, ""))
		}
		log.Warn("stale version", zap.Int64("expected", *cmd.ExpectedVersion), zap.Int64("actual", before.Version))
		return Decision{}, workflowerrors.ConcurrentModification(*cmd.ExpectedVersion, before.Version)
	}

	d, err := Decide(before, actor, action, cmd.Comment, e.now())
	if err != nil {
		log.Warn("transition refused", zap.Error(err))
		return Decision{}, err
	}

	if mutate != nil {
		if err := applyMutation(&d.Request, mutate); err != nil {
			log.Warn("edit refused", zap.Error(err))
			return Decision{}, err
		}
	}

	ev, err := Seal(snap.LastHash, snap.NextSeq, d.Event)
	if err != nil {
		return Decision{}, err
	}
	d.Event = ev
	d.Request.Version = before.Version + 1

	if err := e.store.Commit(ctx, Commit{Tenant: cmd.Tenant, Before: before, After: d.Request, Event: ev}); err != nil {
		log.Error("commit failed", zap.Error(err))
		return Decision{}, err
	}

	if e.notifier != nil {
		if err := e.notifier.Transitioned(ctx, d.Request, ev); err != nil {
			log.Error("notify failed", zap.Error(err))
		}
	}

	log.Info("transition committed",
		zap.String("status", string(d.Request.State.Status)),
		zap.Int("stage", d.Request.State.CurrentStage),
		zap.Int("seq", ev.Seq),
	)
	return d, nil
}

// applyMutation runs mutate on a copy and rejects changes to fields that are
// fixed after creation. Once submitted, the edited request must still resolve
// to the chain it was submitted with.
func applyMutation(req *Request, mutate Mutator) error {
	edited := *req
	if err := mutate(&edited); err != nil {
		return err
	}
	if edited.SubjectID != req.SubjectID || edited.RequesterID != req.RequesterID {
		return workflowerrors.ErrSubjectImmutable
	}
	if edited.Kind != req.Kind || edited.ID != req.ID || edited.Tenant != req.Tenant || edited.Reference != req.Reference {
		return workflowerrors.ErrValidation
	}
	if edited.Magnitude < 0 {
		return workflowerrors.ErrNegativeMagnitude
	}
	if edited.StartDate != nil && edited.EndDate != nil && edited.EndDate.Before(*edited.StartDate) {
		return workflowerrors.ErrInvalidDateRange
	}
	if len(req.Resolution.Stages) > 0 {
		if !strings.EqualFold(edited.OriginJurisdiction, req.OriginJurisdiction) {
			return workflowerrors.ErrChainChanged
		}
		res, err := ResolveChain(edited.Kind, edited.OriginJurisdiction, edited.Magnitude)
		if err != nil {
			return err
		}
		if !res.Equal(req.Resolution) {
			return workflowerrors.ErrChainChanged
		}
	}
	edited.State = req.State
	edited.Resolution = req.Resolution
	edited.Version = req.Version
	*req = edited
	return nil
}
