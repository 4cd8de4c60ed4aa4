package approval_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-hrflow/internal/approval"
	approvalerrors "go-hrflow/internal/approval/errors"
	"go-hrflow/internal/directory"
	directoryerrors "go-hrflow/internal/directory/errors"
	"go-hrflow/internal/record"
	"go-hrflow/internal/shared/counter"
	"go-hrflow/internal/workflow"
	workflowerrors "go-hrflow/internal/workflow/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type fakeEngine struct {
	calls  []workflow.Action
	cmd    workflow.Command
	err    error
	mutate workflow.Mutator
}

func (f *fakeEngine) do(action workflow.Action, cmd workflow.Command) (workflow.Decision, error) {
	f.calls = append(f.calls, action)
	f.cmd = cmd
	if f.err != nil {
		return workflow.Decision{}, f.err
	}
	return workflow.Decision{Request: workflow.Request{ID: cmd.RequestID}}, nil
}

func (f *fakeEngine) Submit(ctx context.Context, cmd workflow.Command) (workflow.Decision, error) {
	return f.do(workflow.ActionSubmit, cmd)
}
func (f *fakeEngine) Approve(ctx context.Context, cmd workflow.Command) (workflow.Decision, error) {
	return f.do(workflow.ActionApprove, cmd)
}
func (f *fakeEngine) Reject(ctx context.Context, cmd workflow.Command) (workflow.Decision, error) {
	return f.do(workflow.ActionReject, cmd)
}
func (f *fakeEngine) RequestClarification(ctx context.Context, cmd workflow.Command) (workflow.Decision, error) {
	return f.do(workflow.ActionRequestClarification, cmd)
}
func (f *fakeEngine) Resubmit(ctx context.Context, cmd workflow.Command) (workflow.Decision, error) {
	return f.do(workflow.ActionResubmit, cmd)
}
func (f *fakeEngine) Cancel(ctx context.Context, cmd workflow.Command) (workflow.Decision, error) {
	return f.do(workflow.ActionCancel, cmd)
}
func (f *fakeEngine) Edit(ctx context.Context, cmd workflow.Command, mutate workflow.Mutator) (workflow.Decision, error) {
	f.mutate = mutate
	return f.do(workflow.ActionEdit, cmd)
}

type fakeEmployees struct {
	getByIDFn   func(ctx context.Context, companyID, id string) (*directory.Employee, error)
	namesByIDFn func(ctx context.Context, companyID string, ids []string) (map[string]string, error)
}

func (f *fakeEmployees) GetByID(ctx context.Context, companyID, id string) (*directory.Employee, error) {
	return f.getByIDFn(ctx, companyID, id)
}

func (f *fakeEmployees) NamesByID(ctx context.Context, companyID string, ids []string) (map[string]string, error) {
	if f.namesByIDFn != nil {
		return f.namesByIDFn(ctx, companyID, ids)
	}
	return map[string]string{}, nil
}

type fakeCounter struct{ next int64 }

func (f *fakeCounter) WithTx(tx *sql.Tx) counter.Repository { return f }

func (f *fakeCounter) GetNextValue(ctx context.Context, companyID, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type serviceDeps struct {
	sqlMock   sqlmock.Sqlmock
	service   approval.Service
	repo      *fakeRepository
	engine    *fakeEngine
	employees *fakeEmployees
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	deps := &serviceDeps{
		sqlMock:   sqlMock,
		repo:      &fakeRepository{},
		engine:    &fakeEngine{},
		employees: &fakeEmployees{},
	}
	deps.service = approval.NewService(db, deps.repo, deps.engine, deps.employees, &fakeCounter{}, 2, zap.NewNop())
	return deps
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	managerID := uuid.New()

	subject := func(ctx context.Context, cid, id string) (*directory.Employee, error) {
		return &directory.Employee{
			ID:               uuid.MustParse(id),
			CompanyID:        uuid.MustParse(cid),
			ManagerID:        &managerID,
			Jurisdiction:     "uk",
			NoticePeriodDays: 30,
		}, nil
	}

	t.Run("success leave request takes inclusive days and subject jurisdiction", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.employees.getByIDFn = subject
		expectTx(t, deps.sqlMock, true)

		var created approval.ApprovalRequest
		deps.repo.createFn = func(ctx context.Context, r *approval.ApprovalRequest) error {
			created = *r
			return nil
		}

		resp, err := deps.service.Create(ctx, companyID, actorID, approval.CreateApprovalRequest{
			Kind:      "LEAVE_REQUEST",
			Category:  "ANNUAL",
			StartDate: "2026-03-02",
			EndDate:   "2026-03-06",
		})

		require.NoError(t, err)
		assert.Equal(t, "APR-000001", resp.Reference)
		assert.Equal(t, 5, resp.Magnitude)
		assert.Equal(t, "UK", resp.OriginJurisdiction)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.Equal(t, "DRAFT", resp.StatusLabel)
		assert.Equal(t, actorID, resp.SubjectID)
		assert.Equal(t, actorID, resp.RequesterID)
		require.NotNil(t, resp.LineManagerID)
		assert.Equal(t, managerID.String(), *resp.LineManagerID)
		assert.Equal(t, 0, created.MaxAllowedEdits)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("success schedule gets the edit quota", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.employees.getByIDFn = subject
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, companyID, actorID, approval.CreateApprovalRequest{
			Kind:      "LEAVE_SCHEDULE",
			StartDate: "2026-07-01",
			EndDate:   "2026-07-10",
		})

		require.NoError(t, err)
		assert.Equal(t, 2, resp.MaxAllowedEdits)
		assert.Equal(t, 10, resp.Magnitude)
	})

	t.Run("success resignation gets last working day from notice period", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.employees.getByIDFn = subject
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, companyID, actorID, approval.CreateApprovalRequest{Kind: "RESIGNATION"})

		require.NoError(t, err)
		require.NotNil(t, resp.EffectiveDate)
		want := time.Now().UTC().AddDate(0, 0, 30).Format("2006-01-02")
		assert.Equal(t, want, *resp.EffectiveDate)
	})

	t.Run("negative subject outside company", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.employees.getByIDFn = func(ctx context.Context, cid, id string) (*directory.Employee, error) {
			return nil, directoryerrors.ErrEmployeeNotFound
		}

		_, err := deps.service.Create(ctx, companyID, actorID, approval.CreateApprovalRequest{
			Kind:       "HANDOVER",
			EmployeeID: uuid.New().String(),
		})

		assert.ErrorIs(t, err, approvalerrors.ErrSubjectNotInCompany)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative input validation", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.employees.getByIDFn = subject
		negative := -1

		cases := []struct {
			name string
			req  approval.CreateApprovalRequest
			want error
		}{
			{"dates required", approval.CreateApprovalRequest{Kind: "BUSINESS_TRIP"}, approvalerrors.ErrDatesRequired},
			{"half a range", approval.CreateApprovalRequest{Kind: "HANDOVER", StartDate: "2026-03-01"}, approvalerrors.ErrDatesRequired},
			{"bad format", approval.CreateApprovalRequest{Kind: "LEAVE_REQUEST", StartDate: "01/03/2026", EndDate: "2026-03-02"}, approvalerrors.ErrInvalidDateFormat},
			{"end before start", approval.CreateApprovalRequest{Kind: "LEAVE_REQUEST", StartDate: "2026-03-05", EndDate: "2026-03-01"}, workflowerrors.ErrInvalidDateRange},
			{"negative magnitude", approval.CreateApprovalRequest{Kind: "HANDOVER", Magnitude: &negative}, workflowerrors.ErrNegativeMagnitude},
			{"unknown kind", approval.CreateApprovalRequest{Kind: "SABBATICAL"}, workflowerrors.ErrUnknownKind},
		}
		for _, tc := range cases {
			_, err := deps.service.Create(ctx, companyID, actorID, tc.req)
			assert.ErrorIs(t, err, tc.want, tc.name)
		}
	})
}

func TestService_Transitions(t *testing.T) {
	ctx := context.Background()
	companyID, id := uuid.New(), uuid.New()
	managerID := uuid.New()
	version := int64(3)

	t.Run("success passes the command and returns the reloaded row", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, rid string) (*approval.ApprovalRequest, error) {
			return pendingRow(t, companyID, id, managerID), nil
		}

		resp, err := deps.service.Reject(ctx, companyID.String(), managerID.String(), id.String(), approval.TransitionRequest{
			Comment:         "dates clash with release",
			ExpectedVersion: &version,
		})

		require.NoError(t, err)
		assert.Equal(t, []workflow.Action{workflow.ActionReject}, deps.engine.calls)
		assert.Equal(t, "dates clash with release", deps.engine.cmd.Comment)
		assert.Equal(t, &version, deps.engine.cmd.ExpectedVersion)
		assert.Equal(t, companyID.String(), deps.engine.cmd.Tenant)
		assert.Equal(t, "PENDING_LINE_MANAGER", resp.StatusLabel)
		assert.Len(t, resp.Stages, 3)
	})

	t.Run("every action reaches its engine method", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, rid string) (*approval.ApprovalRequest, error) {
			return pendingRow(t, companyID, id, managerID), nil
		}
		s, cid, aid, rid := deps.service, companyID.String(), managerID.String(), id.String()
		req := approval.TransitionRequest{}

		_, _ = s.Submit(ctx, cid, aid, rid, req)
		_, _ = s.Approve(ctx, cid, aid, rid, req)
		_, _ = s.RequestClarification(ctx, cid, aid, rid, req)
		_, _ = s.Resubmit(ctx, cid, aid, rid, req)
		_, _ = s.Cancel(ctx, cid, aid, rid, req)

		assert.Equal(t, []workflow.Action{
			workflow.ActionSubmit,
			workflow.ActionApprove,
			workflow.ActionRequestClarification,
			workflow.ActionResubmit,
			workflow.ActionCancel,
		}, deps.engine.calls)
	})

	t.Run("negative missing request maps to not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.engine.err = workflowerrors.ErrRequestNotFound

		_, err := deps.service.Approve(ctx, companyID.String(), managerID.String(), id.String(), approval.TransitionRequest{})

		assert.ErrorIs(t, err, approvalerrors.ErrApprovalNotFound)
	})

	t.Run("negative engine refusal is returned as is", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.engine.err = workflowerrors.Unauthorized("approval:approve:HR")

		_, err := deps.service.Approve(ctx, companyID.String(), managerID.String(), id.String(), approval.TransitionRequest{})

		assert.ErrorIs(t, err, workflowerrors.ErrUnauthorizedTransition)
	})
}

func TestService_Edit(t *testing.T) {
	ctx := context.Background()
	companyID, id := uuid.New(), uuid.New()

	t.Run("success mutator rewrites dates and magnitude", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, rid string) (*approval.ApprovalRequest, error) {
			return pendingRow(t, companyID, id, uuid.New()), nil
		}

		_, err := deps.service.Edit(ctx, companyID.String(), uuid.New().String(), id.String(), approval.EditRequest{
			StartDate: "2026-08-03",
			EndDate:   "2026-08-07",
			Comment:   "moved a week",
		})
		require.NoError(t, err)
		require.NotNil(t, deps.engine.mutate)

		var r workflow.Request
		require.NoError(t, deps.engine.mutate(&r))
		assert.Equal(t, 5, r.Magnitude)
		assert.Equal(t, "2026-08-03", r.StartDate.Format("2006-01-02"))
		assert.Equal(t, "moved a week", deps.engine.cmd.Comment)
	})

	t.Run("negative quota exhausted", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.engine.err = workflowerrors.EditLimitExceeded(2, 2)

		_, err := deps.service.Edit(ctx, companyID.String(), uuid.New().String(), id.String(), approval.EditRequest{
			StartDate: "2026-08-03",
			EndDate:   "2026-08-07",
		})

		assert.ErrorIs(t, err, workflowerrors.ErrEditLimitExceeded)
	})
}

func TestService_ChainPreview(t *testing.T) {
	deps := setupServiceTest(t)

	resp, err := deps.service.ChainPreview(context.Background(), approval.ChainPreviewQuery{
		Kind:         "leave_request",
		Jurisdiction: "UK",
		Magnitude:    5,
	})

	require.NoError(t, err)
	assert.Equal(t, "SEQUENTIAL", resp.Semantics)
	roles := make([]string, len(resp.Stages))
	for i, s := range resp.Stages {
		roles[i] = s.Role
	}
	assert.Equal(t, []string{"LINE_MANAGER", "ADDITIONAL_APPROVER", "HR"}, roles)

	_, err = deps.service.ChainPreview(context.Background(), approval.ChainPreviewQuery{Kind: "NOPE"})
	assert.ErrorIs(t, err, workflowerrors.ErrUnknownKind)
}

func TestService_GetTrail(t *testing.T) {
	ctx := context.Background()
	companyID, id, managerID := uuid.New(), uuid.New(), uuid.New()

	row := pendingRow(t, companyID, id, managerID)
	row.Status = string(workflow.StatusDraft)
	row.Resolution = nil

	// submit then line manager approval
	req := workflow.Request{
		ID:                 id.String(),
		Tenant:             companyID.String(),
		Kind:               workflow.KindLeaveRequest,
		SubjectID:          row.SubjectID.String(),
		RequesterID:        row.RequesterID.String(),
		LineManagerID:      managerID.String(),
		OriginJurisdiction: "UK",
		Magnitude:          5,
		State:              workflow.InitialState(),
	}
	d1, err := workflow.Decide(req, workflow.Actor{ID: row.RequesterID.String()}, workflow.ActionSubmit, "", time.Now())
	require.NoError(t, err)
	e1, err := workflow.Seal("", 1, d1.Event)
	require.NoError(t, err)
	d2, err := workflow.Decide(d1.Request, workflow.Actor{ID: managerID.String()}, workflow.ActionApprove, "", time.Now())
	require.NoError(t, err)
	e2, err := workflow.Seal(e1.Hash, 2, d2.Event)
	require.NoError(t, err)

	stored := *row
	res, _ := json.Marshal(d2.Request.Resolution)
	stored.Resolution = datatypes.JSON(res)
	stored.Status = string(d2.Request.State.Status)
	stored.CurrentStage = d2.Request.State.CurrentStage
	stored.CompletedStages = int64(d2.Request.State.Completed)

	eventRows := []approval.ApprovalEvent{eventRow(id, e1), eventRow(id, e2)}

	t.Run("success verified trail", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, rid string) (*approval.ApprovalRequest, error) {
			return &stored, nil
		}
		deps.repo.listEventsFn = func(ctx context.Context, cid, rid string) ([]approval.ApprovalEvent, error) {
			return eventRows, nil
		}

		resp, err := deps.service.GetTrail(ctx, companyID.String(), id.String())

		require.NoError(t, err)
		assert.Len(t, resp.Events, 2)
		assert.True(t, resp.ChainValid)
		assert.True(t, resp.ReplayValid)
		assert.Empty(t, resp.Problem)
	})

	t.Run("negative tampered comment breaks the chain", func(t *testing.T) {
		deps := setupServiceTest(t)
		tampered := append([]approval.ApprovalEvent(nil), eventRows...)
		tampered[1].Comment = "edited later"
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, rid string) (*approval.ApprovalRequest, error) {
			return &stored, nil
		}
		deps.repo.listEventsFn = func(ctx context.Context, cid, rid string) ([]approval.ApprovalEvent, error) {
			return tampered, nil
		}

		resp, err := deps.service.GetTrail(ctx, companyID.String(), id.String())

		require.NoError(t, err)
		assert.False(t, resp.ChainValid)
		assert.True(t, resp.ReplayValid)
		assert.NotEmpty(t, resp.Problem)
	})

	t.Run("negative stored state diverges from replay", func(t *testing.T) {
		deps := setupServiceTest(t)
		diverged := stored
		diverged.Status = string(workflow.StatusApproved)
		deps.repo.findByIDAndCompanyFn = func(ctx context.Context, cid, rid string) (*approval.ApprovalRequest, error) {
			return &diverged, nil
		}
		deps.repo.listEventsFn = func(ctx context.Context, cid, rid string) ([]approval.ApprovalEvent, error) {
			return eventRows, nil
		}

		resp, err := deps.service.GetTrail(ctx, companyID.String(), id.String())

		require.NoError(t, err)
		assert.True(t, resp.ChainValid)
		assert.False(t, resp.ReplayValid)
	})

	t.Run("negative malformed id", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, err := deps.service.GetTrail(ctx, companyID.String(), "123")
		assert.ErrorIs(t, err, approvalerrors.ErrApprovalNotFound)
	})
}

func TestService_Records(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	alice, bob := uuid.New(), uuid.New()
	day := func(d int) *time.Time {
		v := time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	rows := []approval.ApprovalRequest{
		{
			ID: uuid.New(), CompanyID: companyID, Kind: "LEAVE_REQUEST", SubjectID: bob, Category: "SICK",
			StartDate: day(10), EndDate: day(11), Magnitude: 2,
			Status: "PENDING", CurrentStage: 1, CompletedStages: 1,
			Resolution: datatypes.JSON(`{"semantics":"SEQUENTIAL","stages":[{"role":"LINE_MANAGER","required":true},{"role":"HR","required":true}]}`),
		},
		{ID: uuid.New(), CompanyID: companyID, Kind: "LEAVE_SCHEDULE", SubjectID: alice, Category: "ANNUAL", StartDate: day(3), EndDate: day(9), Magnitude: 7, Status: "DRAFT", EditCount: 1, MaxAllowedEdits: 2},
		{ID: uuid.New(), CompanyID: companyID, Kind: "RESIGNATION", SubjectID: alice, Status: "PENDING"},
	}

	setup := func(t *testing.T) *serviceDeps {
		deps := setupServiceTest(t)
		deps.repo.findAllByCompanyFn = func(ctx context.Context, cid string, f approval.ListFilter) ([]approval.ApprovalRequest, error) {
			return rows, nil
		}
		deps.employees.namesByIDFn = func(ctx context.Context, cid string, ids []string) (map[string]string, error) {
			assert.Len(t, ids, 2)
			return map[string]string{alice.String(): "Alice", bob.String(): "Bob"}, nil
		}
		return deps
	}

	t.Run("success by date skips undated kinds", func(t *testing.T) {
		deps := setup(t)

		out, err := deps.service.Records(ctx, companyID.String(), approval.RecordsQuery{Sort: "date"})

		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "Alice", out[0].EmployeeName)
		assert.Equal(t, record.TypeSchedule, out[0].RecordType)
		assert.True(t, out[0].CanEdit)
		require.NotNil(t, out[0].EditsRemaining)
		assert.Equal(t, 1, *out[0].EditsRemaining)
		assert.Equal(t, "SICK", out[1].LeaveType)
		assert.Equal(t, "DRAFT", out[0].Status)
		assert.Equal(t, "PENDING_HR", out[1].Status)
	})

	t.Run("success filtered by status label", func(t *testing.T) {
		deps := setup(t)

		out, err := deps.service.Records(ctx, companyID.String(), approval.RecordsQuery{Status: "pending_hr"})

		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "Bob", out[0].EmployeeName)
	})

	t.Run("success filtered by type and sorted by magnitude desc", func(t *testing.T) {
		deps := setup(t)

		out, err := deps.service.Records(ctx, companyID.String(), approval.RecordsQuery{Sort: "magnitude", Order: "desc", Type: "request"})

		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "Bob", out[0].EmployeeName)
	})

	t.Run("negative bad sort or order", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Records(ctx, companyID.String(), approval.RecordsQuery{Sort: "salary"})
		assert.ErrorIs(t, err, approvalerrors.ErrInvalidSortKey)

		_, err = deps.service.Records(ctx, companyID.String(), approval.RecordsQuery{Order: "sideways"})
		assert.ErrorIs(t, err, approvalerrors.ErrInvalidSortOrder)
	})
}

func eventRow(requestID uuid.UUID, ev workflow.Event) approval.ApprovalEvent {
	return approval.ApprovalEvent{
		ID:         uuid.New(),
		RequestID:  requestID,
		Seq:        ev.Seq,
		StageIndex: ev.StageIndex,
		ActorID:    ev.ActorID,
		ActorRole:  string(ev.ActorRole),
		Action:     string(ev.Action),
		Comment:    ev.Comment,
		OccurredAt: ev.Timestamp,
		PrevHash:   ev.PrevHash,
		Hash:       ev.Hash,
	}
}
