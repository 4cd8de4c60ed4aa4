package approval

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	approvalerrors "go-hrflow/internal/approval/errors"
	"go-hrflow/internal/directory"
	directoryerrors "go-hrflow/internal/directory/errors"
	"go-hrflow/internal/duration"
	"go-hrflow/internal/record"
	"go-hrflow/internal/shared/counter"
	"go-hrflow/internal/workflow"
	workflowerrors "go-hrflow/internal/workflow/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	referenceCounter = "approval_reference"
	referencePrefix  = "APR"
)

// Engine is satisfied by *workflow.Engine.
type Engine interface {
	Submit(ctx context.Context, cmd workflow.Command) (workflow.Decision, error)
	Approve(ctx context.Context, cmd workflow.Command) (workflow.Decision, error)
	Reject(ctx context.Context, cmd workflow.Command) (workflow.Decision, error)
	RequestClarification(ctx context.Context, cmd workflow.Command) (workflow.Decision, error)
	Resubmit(ctx context.Context, cmd workflow.Command) (workflow.Decision, error)
	Cancel(ctx context.Context, cmd workflow.Command) (workflow.Decision, error)
	Edit(ctx context.Context, cmd workflow.Command, mutate workflow.Mutator) (workflow.Decision, error)
}

// EmployeeLookup is the part of directory.Service this package needs.
type EmployeeLookup interface {
	GetByID(ctx context.Context, companyID, id string) (*directory.Employee, error)
	NamesByID(ctx context.Context, companyID string, ids []string) (map[string]string, error)
}

//go:generate mockgen -source=approval_service.go -destination=mock/approval_service_mock.go -package=mock
type Service interface {
	ChainPreview(ctx context.Context, q ChainPreviewQuery) (ChainPreviewResponse, error)
	Create(ctx context.Context, companyID, actorID string, req CreateApprovalRequest) (ApprovalResponse, error)
	GetAll(ctx context.Context, companyID string, filter ListFilter) ([]ApprovalResponse, error)
	GetByID(ctx context.Context, companyID, id string) (ApprovalResponse, error)
	Submit(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error)
	Reject(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error)
	RequestClarification(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error)
	Resubmit(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error)
	Cancel(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error)
	Edit(ctx context.Context, companyID, actorID, id string, req EditRequest) (ApprovalResponse, error)
	GetTrail(ctx context.Context, companyID, id string) (TrailResponse, error)
	Records(ctx context.Context, companyID string, q RecordsQuery) ([]record.UnifiedRecord, error)
}

type service struct {
	db               *sql.DB
	repo             Repository
	engine           Engine
	employees        EmployeeLookup
	refs             counter.Repository
	maxScheduleEdits int
	now              func() time.Time
	logger           *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	engine Engine,
	employees EmployeeLookup,
	refs counter.Repository,
	maxScheduleEdits int,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	return &service{
		db:               db,
		repo:             repo,
		engine:           engine,
		employees:        employees,
		refs:             refs,
		maxScheduleEdits: maxScheduleEdits,
		now:              time.Now,
		logger:           l,
	}
}

func (s *service) ChainPreview(ctx context.Context, q ChainPreviewQuery) (ChainPreviewResponse, error) {
	kind := workflow.Kind(strings.ToUpper(strings.TrimSpace(q.Kind)))
	res, err := workflow.ResolveChain(kind, q.Jurisdiction, q.Magnitude)
	if err != nil {
		return ChainPreviewResponse{}, err
	}
	return ChainPreviewResponse{
		Kind:      string(kind),
		Semantics: string(res.Semantics),
		Stages:    stagesOf(res, nil),
	}, nil
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateApprovalRequest) (ApprovalResponse, error) {
	s.logger.Debug("create approval requested",
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("kind", req.Kind),
		zap.String("employee_id", req.EmployeeID),
	)

	row, err := s.buildRequest(companyID, actorID, req)
	if err != nil {
		s.logger.Warn("create approval validation failed", zap.Error(err))
		return ApprovalResponse{}, err
	}

	subject, err := s.employees.GetByID(ctx, companyID, row.SubjectID.String())
	if err != nil {
		if errors.Is(err, directoryerrors.ErrEmployeeNotFound) || errors.Is(err, directoryerrors.ErrInvalidEmployeeID) {
			s.logger.Warn("create approval subject not in company",
				zap.String("company_id", companyID),
				zap.String("employee_id", row.SubjectID.String()),
			)
			return ApprovalResponse{}, approvalerrors.ErrSubjectNotInCompany
		}
		s.logger.Error("create approval subject lookup failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	row.LineManagerID = subject.ManagerID
	if row.OriginJurisdiction == "" {
		row.OriginJurisdiction = strings.ToUpper(subject.Jurisdiction)
	}
	if row.Kind == string(workflow.KindResignation) {
		last := duration.NoticePeriodEnd(s.now(), subject.NoticePeriodDays)
		row.EffectiveDate = &last
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create approval begin tx failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	defer tx.Rollback()

	seq, err := s.refs.WithTx(tx).GetNextValue(ctx, companyID, referenceCounter)
	if err != nil {
		s.logger.Error("create approval reference failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	row.Reference = counter.Reference(referencePrefix, seq)

	if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
		s.logger.Error("create approval persist failed", zap.Error(err))
		return ApprovalResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create approval commit failed", zap.Error(err))
		return ApprovalResponse{}, err
	}
	s.logger.Info("create approval success",
		zap.String("approval_id", row.ID.String()),
		zap.String("reference", row.Reference),
		zap.String("kind", row.Kind),
	)

	return mapToResponse(*row)
}

func (s *service) buildRequest(companyID, actorID string, req CreateApprovalRequest) (*ApprovalRequest, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, approvalerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, approvalerrors.ErrInvalidActorID
	}
	subjectUUID := actorUUID
	if req.EmployeeID != "" {
		if subjectUUID, err = uuid.Parse(req.EmployeeID); err != nil {
			return nil, approvalerrors.ErrInvalidEmployeeID
		}
	}

	kind := workflow.Kind(strings.ToUpper(strings.TrimSpace(req.Kind)))
	if !kind.IsValid() {
		return nil, workflowerrors.ErrUnknownKind
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if (startDate == nil) != (endDate == nil) || (needsDates(kind) && startDate == nil) {
		return nil, approvalerrors.ErrDatesRequired
	}
	if startDate != nil && endDate.Before(*startDate) {
		return nil, workflowerrors.ErrInvalidDateRange
	}

	magnitude := 0
	switch {
	case req.Magnitude != nil:
		if *req.Magnitude < 0 {
			return nil, workflowerrors.ErrNegativeMagnitude
		}
		magnitude = *req.Magnitude
	case startDate != nil:
		magnitude = duration.InclusiveDays(*startDate, *endDate)
	}

	row := &ApprovalRequest{
		ID:                 uuid.New(),
		CompanyID:          companyUUID,
		Kind:               string(kind),
		SubjectID:          subjectUUID,
		RequesterID:        actorUUID,
		OriginJurisdiction: strings.ToUpper(strings.TrimSpace(req.Jurisdiction)),
		Category:           req.Category,
		Reason:             req.Reason,
		Magnitude:          magnitude,
		StartDate:          startDate,
		EndDate:            endDate,
		Status:             string(workflow.StatusDraft),
	}
	if kind.IsSchedule() {
		row.MaxAllowedEdits = s.maxScheduleEdits
	}
	return row, nil
}

func needsDates(kind workflow.Kind) bool {
	switch kind {
	case workflow.KindLeaveRequest, workflow.KindLeaveSchedule, workflow.KindBusinessTrip:
		return true
	}
	return false
}

func (s *service) GetAll(ctx context.Context, companyID string, filter ListFilter) ([]ApprovalResponse, error) {
	rows, err := s.repo.FindAllByCompany(ctx, companyID, filter)
	if err != nil {
		s.logger.Error("list approvals failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	return mapToListResponse(rows)
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (ApprovalResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ApprovalResponse{}, approvalerrors.ErrApprovalNotFound
	}
	row, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ApprovalResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*row)
}

type transitionFunc func(ctx context.Context, cmd workflow.Command) (workflow.Decision, error)

func (s *service) Submit(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error) {
	return s.transition(ctx, companyID, actorID, id, workflow.ActionSubmit, req, s.engine.Submit)
}

func (s *service) Approve(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error) {
	return s.transition(ctx, companyID, actorID, id, workflow.ActionApprove, req, s.engine.Approve)
}

func (s *service) Reject(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error) {
	return s.transition(ctx, companyID, actorID, id, workflow.ActionReject, req, s.engine.Reject)
}

func (s *service) RequestClarification(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error) {
	return s.transition(ctx, companyID, actorID, id, workflow.ActionRequestClarification, req, s.engine.RequestClarification)
}

func (s *service) Resubmit(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error) {
	return s.transition(ctx, companyID, actorID, id, workflow.ActionResubmit, req, s.engine.Resubmit)
}

func (s *service) Cancel(ctx context.Context, companyID, actorID, id string, req TransitionRequest) (ApprovalResponse, error) {
	return s.transition(ctx, companyID, actorID, id, workflow.ActionCancel, req, s.engine.Cancel)
}

func (s *service) transition(
	ctx context.Context,
	companyID, actorID, id string,
	action workflow.Action,
	req TransitionRequest,
	fn transitionFunc,
) (ApprovalResponse, error) {
	s.logger.Debug("approval transition requested",
		zap.String("approval_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
		zap.String("action", string(action)),
	)

	d, err := fn(ctx, workflow.Command{
		Tenant:          companyID,
		RequestID:       id,
		ActorID:         actorID,
		Comment:         req.Comment,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return ApprovalResponse{}, mapTransitionError(err)
	}

	s.logger.Info("approval transition success",
		zap.String("approval_id", id),
		zap.String("action", string(action)),
		zap.String("status", workflow.Label(d.Request)),
	)
	return s.GetByID(ctx, companyID, id)
}

func (s *service) Edit(ctx context.Context, companyID, actorID, id string, req EditRequest) (ApprovalResponse, error) {
	s.logger.Debug("approval edit requested",
		zap.String("approval_id", id),
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
	)

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return ApprovalResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return ApprovalResponse{}, err
	}
	if startDate == nil || endDate == nil {
		return ApprovalResponse{}, approvalerrors.ErrDatesRequired
	}

	d, err := s.engine.Edit(ctx, workflow.Command{
		Tenant:          companyID,
		RequestID:       id,
		ActorID:         actorID,
		Comment:         req.Comment,
		ExpectedVersion: req.ExpectedVersion,
	}, func(r *workflow.Request) error {
		r.StartDate = startDate
		r.EndDate = endDate
		if !endDate.Before(*startDate) {
			r.Magnitude = duration.InclusiveDays(*startDate, *endDate)
		}
		return nil
	})
	if err != nil {
		return ApprovalResponse{}, mapTransitionError(err)
	}

	s.logger.Info("approval edit success",
		zap.String("approval_id", id),
		zap.Int("edit_count", d.Request.State.EditCount),
	)
	return s.GetByID(ctx, companyID, id)
}

func mapTransitionError(err error) error {
	if errors.Is(err, workflowerrors.ErrRequestNotFound) {
		return approvalerrors.ErrApprovalNotFound
	}
	return err
}

// GetTrail returns the event log together with the result of checking its
// hash chain and replaying it against the stored state. A broken trail is
// reported, not returned as an error.
func (s *service) GetTrail(ctx context.Context, companyID, id string) (TrailResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return TrailResponse{}, approvalerrors.ErrApprovalNotFound
	}
	row, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return TrailResponse{}, mapRepositoryError(err)
	}
	rows, err := s.repo.ListEvents(ctx, companyID, id)
	if err != nil {
		s.logger.Error("list approval events failed", zap.String("approval_id", id), zap.Error(err))
		return TrailResponse{}, err
	}

	evs := make([]workflow.Event, len(rows))
	resp := TrailResponse{RequestID: id, Events: make([]EventResponse, len(rows))}
	for i, r := range rows {
		evs[i] = toDomainEvent(r)
		resp.Events[i] = mapToEventResponse(evs[i])
	}

	if err := workflow.VerifyChain(evs); err != nil {
		resp.Problem = err.Error()
	} else {
		resp.ChainValid = true
	}

	req, err := toDomain(*row)
	if err == nil {
		err = workflow.VerifyReplay(req, evs)
	}
	if err != nil {
		if resp.Problem == "" {
			resp.Problem = err.Error()
		}
	} else {
		resp.ReplayValid = true
	}

	if !resp.ChainValid || !resp.ReplayValid {
		s.logger.Error("approval trail failed verification",
			zap.String("approval_id", id),
			zap.String("problem", resp.Problem),
		)
	}
	return resp, nil
}

// Records projects dated requests and leave schedules into one timeline.
func (s *service) Records(ctx context.Context, companyID string, q RecordsQuery) ([]record.UnifiedRecord, error) {
	key, err := record.ParseSortKey(q.Sort)
	if err != nil {
		return nil, approvalerrors.ErrInvalidSortKey
	}
	var desc bool
	switch strings.ToLower(q.Order) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return nil, approvalerrors.ErrInvalidSortOrder
	}

	rows, err := s.repo.FindAllByCompany(ctx, companyID, ListFilter{})
	if err != nil {
		s.logger.Error("list records failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	ids := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		id := r.SubjectID.String()
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	names, err := s.employees.NamesByID(ctx, companyID, ids)
	if err != nil {
		return nil, err
	}

	var requests []record.RequestSource
	var schedules []record.ScheduleSource
	for _, r := range rows {
		if r.StartDate == nil || r.EndDate == nil {
			continue
		}
		req, err := toDomain(r)
		if err != nil {
			s.logger.Error("decode record failed", zap.String("request_id", r.ID.String()), zap.Error(err))
			return nil, err
		}
		status := workflow.Label(req)
		editable := r.Status == string(workflow.StatusDraft) || r.Status == string(workflow.StatusClarificationRequested)
		name := names[r.SubjectID.String()]
		if r.Kind == string(workflow.KindLeaveSchedule) {
			schedules = append(schedules, record.ScheduleSource{
				ID:           r.ID.String(),
				EmployeeName: name,
				Category:     r.Category,
				Periods:      []record.Period{{Start: *r.StartDate, End: *r.EndDate, Days: r.Magnitude}},
				Status:       status,
				EditCount:    r.EditCount,
				MaxEdits:     r.MaxAllowedEdits,
				Locked:       !editable,
			})
			continue
		}
		requests = append(requests, record.RequestSource{
			ID:           r.ID.String(),
			EmployeeName: name,
			LeaveType:    categoryOr(r.Category, r.Kind),
			StartDate:    *r.StartDate,
			EndDate:      *r.EndDate,
			TotalDays:    r.Magnitude,
			Status:       status,
			Editable:     editable,
		})
	}

	out := record.Unify(requests, schedules, key, desc)

	var preds []record.Predicate
	if q.Type != "" {
		preds = append(preds, record.WithType(record.RecordType(strings.ToLower(q.Type))))
	}
	if q.Status != "" {
		preds = append(preds, record.WithStatus(q.Status))
	}
	return record.Filter(out, preds...), nil
}

func categoryOr(category, kind string) string {
	if category != "" {
		return category
	}
	return kind
}
