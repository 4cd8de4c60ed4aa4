package approval

import (
	"context"
	"database/sql"

	"go-hrflow/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, r *ApprovalRequest) error
	FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]ApprovalRequest, error)
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*ApprovalRequest, error)
	// UpdateState writes columns only while the stored version still equals
	// expectedVersion and reports whether a row was updated.
	UpdateState(ctx context.Context, companyID, id string, expectedVersion int64, columns map[string]any) (bool, error)
	AppendEvent(ctx context.Context, e *ApprovalEvent) error
	ListEvents(ctx context.Context, companyID, requestID string) ([]ApprovalEvent, error)
	// LastEvent returns nil when the request has no events yet.
	LastEvent(ctx context.Context, companyID, requestID string) (*ApprovalEvent, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

// conn runs statements on the bound transaction when there is one.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, a *ApprovalRequest) error {
	return r.conn(ctx).Create(a).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string, filter ListFilter) ([]ApprovalRequest, error) {
	db := r.conn(ctx).Scopes(tenant.Scope(companyID))
	if filter.Kind != "" {
		db = db.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.SubjectID != "" {
		db = db.Where("subject_id = ?", filter.SubjectID)
	}

	var out []ApprovalRequest
	err := db.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*ApprovalRequest, error) {
	var a ApprovalRequest
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) UpdateState(ctx context.Context, companyID, id string, expectedVersion int64, columns map[string]any) (bool, error) {
	res := r.conn(ctx).
		Model(&ApprovalRequest{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(columns)
	return res.RowsAffected == 1, res.Error
}

func (r *repository) AppendEvent(ctx context.Context, e *ApprovalEvent) error {
	return r.conn(ctx).Create(e).Error
}

func (r *repository) ListEvents(ctx context.Context, companyID, requestID string) ([]ApprovalEvent, error) {
	var out []ApprovalEvent
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("request_id = ?", requestID).
		Order("seq ASC").
		Find(&out).Error
	return out, err
}

func (r *repository) LastEvent(ctx context.Context, companyID, requestID string) (*ApprovalEvent, error) {
	var out []ApprovalEvent
	err := r.conn(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("request_id = ?", requestID).
		Order("seq DESC").
		Limit(1).
		Find(&out).Error
	if err != nil || len(out) == 0 {
		return nil, err
	}
	return &out[0], nil
}
