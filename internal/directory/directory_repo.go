package directory

import (
	"context"

	"go-hrflow/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=directory_repo.go -destination=mock/directory_repo_mock.go -package=mock
type Repository interface {
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error)
	FindByIDs(ctx context.Context, companyID string, ids []string) ([]Employee, error)
	// FindOnProbation lists employees still on probation; an empty
	// companyID spans every company.
	FindOnProbation(ctx context.Context, companyID string) ([]Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindByIDs(ctx context.Context, companyID string, ids []string) ([]Employee, error) {
	var out []Employee
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id IN ?", ids).
		Find(&out).Error
	return out, err
}

func (r *repository) FindOnProbation(ctx context.Context, companyID string) ([]Employee, error) {
	db := r.db.WithContext(ctx).
		Where("employment_status = ?", EmploymentStatusProbation)
	if companyID != "" {
		db = db.Scopes(tenant.Scope(companyID))
	}

	var out []Employee
	err := db.Order("hire_date ASC").Find(&out).Error
	return out, err
}
