package approval_test

import (
	"context"
	"database/sql"
	"testing"

	"go-hrflow/internal/approval"

	"github.com/DATA-DOG/go-sqlmock"
)

type fakeRepository struct {
	withTxFn             func(tx *sql.Tx) approval.Repository
	createFn             func(ctx context.Context, r *approval.ApprovalRequest) error
	findAllByCompanyFn   func(ctx context.Context, companyID string, filter approval.ListFilter) ([]approval.ApprovalRequest, error)
	findByIDAndCompanyFn func(ctx context.Context, companyID, id string) (*approval.ApprovalRequest, error)
	updateStateFn        func(ctx context.Context, companyID, id string, expectedVersion int64, columns map[string]any) (bool, error)
	appendEventFn        func(ctx context.Context, e *approval.ApprovalEvent) error
	listEventsFn         func(ctx context.Context, companyID, requestID string) ([]approval.ApprovalEvent, error)
	lastEventFn          func(ctx context.Context, companyID, requestID string) (*approval.ApprovalEvent, error)
}

func (f *fakeRepository) WithTx(tx *sql.Tx) approval.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeRepository) Create(ctx context.Context, r *approval.ApprovalRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}

func (f *fakeRepository) FindAllByCompany(ctx context.Context, companyID string, filter approval.ListFilter) ([]approval.ApprovalRequest, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID, filter)
	}
	return nil, nil
}

func (f *fakeRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*approval.ApprovalRequest, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, nil
}

func (f *fakeRepository) UpdateState(ctx context.Context, companyID, id string, expectedVersion int64, columns map[string]any) (bool, error) {
	if f.updateStateFn != nil {
		return f.updateStateFn(ctx, companyID, id, expectedVersion, columns)
	}
	return true, nil
}

func (f *fakeRepository) AppendEvent(ctx context.Context, e *approval.ApprovalEvent) error {
	if f.appendEventFn != nil {
		return f.appendEventFn(ctx, e)
	}
	return nil
}

func (f *fakeRepository) ListEvents(ctx context.Context, companyID, requestID string) ([]approval.ApprovalEvent, error) {
	if f.listEventsFn != nil {
		return f.listEventsFn(ctx, companyID, requestID)
	}
	return nil, nil
}

func (f *fakeRepository) LastEvent(ctx context.Context, companyID, requestID string) (*approval.ApprovalEvent, error) {
	if f.lastEventFn != nil {
		return f.lastEventFn(ctx, companyID, requestID)
	}
	return nil, nil
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}
