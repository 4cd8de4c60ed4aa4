package probation

import (
	"context"
	"slices"
	"time"

	"go-hrflow/internal/directory"
	"go-hrflow/internal/duration"
	probationerrors "go-hrflow/internal/probation/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// EmployeeLister is satisfied by directory.Service.
type EmployeeLister interface {
	ListOnProbation(ctx context.Context, companyID string) ([]directory.Employee, error)
}

type Service interface {
	// ListWindows returns open probation windows, most urgent first.
	// An empty companyID lists every company.
	ListWindows(ctx context.Context, companyID string) ([]EmployeeWindowResponse, error)
	Window(q WindowQuery) (WindowResponse, error)
}

type service struct {
	employees EmployeeLister
	table     duration.ProbationTable
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(employees EmployeeLister, table duration.ProbationTable, logger ...*zap.Logger) Service {
	l := zap.L().Named("probation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("probation.service")
	}
	return &service{
		employees: employees,
		table:     table,
		now:       time.Now,
		logger:    l,
	}
}

// NewServiceAt pins the clock, for sweeps and tests.
func NewServiceAt(employees EmployeeLister, table duration.ProbationTable, now func() time.Time, logger ...*zap.Logger) Service {
	s := NewService(employees, table, logger...).(*service)
	s.now = now
	return s
}

func (s *service) ListWindows(ctx context.Context, companyID string) ([]EmployeeWindowResponse, error) {
	s.logger.Debug("list probation windows", zap.String("company_id", companyID))

	if companyID != "" {
		if _, err := uuid.Parse(companyID); err != nil {
			s.logger.Warn("invalid company id", zap.String("company_id", companyID))
			return nil, probationerrors.ErrInvalidCompanyID
		}
	}

	emps, err := s.employees.ListOnProbation(ctx, companyID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]EmployeeWindowResponse, 0, len(emps))
	for _, e := range emps {
		w := duration.ComputeProbationWindow(e.HireDate, s.table.DaysFor(e.ContractType), now)
		if w.Ended {
			continue
		}
		out = append(out, EmployeeWindowResponse{
			EmployeeID:     e.ID.String(),
			CompanyID:      e.CompanyID.String(),
			EmployeeName:   e.FullName,
			ManagerID:      e.ManagerIDString(),
			ContractType:   e.ContractType,
			WindowResponse: toWindowResponse(w),
		})
	}

	slices.SortStableFunc(out, func(a, b EmployeeWindowResponse) int {
		ra := duration.Urgency(a.UrgencyLevel).Rank()
		rb := duration.Urgency(b.UrgencyLevel).Rank()
		if ra != rb {
			return ra - rb
		}
		return a.DaysRemaining - b.DaysRemaining
	})

	s.logger.Info("probation windows listed", zap.String("company_id", companyID), zap.Int("count", len(out)))
	return out, nil
}

func (s *service) Window(q WindowQuery) (WindowResponse, error) {
	start, err := time.Parse(dateLayout, q.StartDate)
	if err != nil {
		s.logger.Warn("invalid probation start date", zap.String("start_date", q.StartDate))
		return WindowResponse{}, probationerrors.ErrInvalidStartDate
	}
	total := 0
	if q.TotalDays != nil {
		total = *q.TotalDays
	}
	if total < 0 {
		return WindowResponse{}, probationerrors.ErrNegativeTotalDays
	}
	return toWindowResponse(duration.ComputeProbationWindow(start, total, s.now())), nil
}

func toWindowResponse(w duration.ProbationWindow) WindowResponse {
	return WindowResponse{
		StartDate:          w.StartDate.Format(dateLayout),
		EndDate:            w.EndDate.Format(dateLayout),
		TotalProbationDays: w.TotalProbationDays,
		DaysCompleted:      w.DaysCompleted,
		DaysRemaining:      w.DaysRemaining,
		ProgressPercent:    w.ProgressPercent,
		UrgencyLevel:       string(w.UrgencyLevel),
	}
}
