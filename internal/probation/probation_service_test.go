package probation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-hrflow/internal/directory"
	"go-hrflow/internal/duration"
	"go-hrflow/internal/probation"
	probationerrors "go-hrflow/internal/probation/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var table = duration.ProbationTable{
	DefaultDays: 90,
	Contracts:   map[string]int{"FIXED_TERM": 60, "INTERNSHIP": 30},
}

type fakeLister struct {
	listFn func(ctx context.Context, companyID string) ([]directory.Employee, error)
}

func (f *fakeLister) ListOnProbation(ctx context.Context, companyID string) ([]directory.Employee, error) {
	return f.listFn(ctx, companyID)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func employee(name, contract, hired string, companyID uuid.UUID) directory.Employee {
	return directory.Employee{
		ID:               uuid.New(),
		CompanyID:        companyID,
		FullName:         name,
		ContractType:     contract,
		HireDate:         date(hired),
		EmploymentStatus: directory.EmploymentStatusProbation,
	}
}

func TestService_ListWindows(t *testing.T) {
	companyID := uuid.New()
	managerID := uuid.New()

	t.Run("success sorted by urgency then days remaining", func(t *testing.T) {
		ada := employee("Ada", "PERMANENT", "2025-12-15", companyID)
		ada.ManagerID = &managerID
		emps := []directory.Employee{
			employee("Normal", "PERMANENT", "2026-03-01", companyID),
			ada,
			employee("Intern", "INTERNSHIP", "2026-02-20", companyID),
			employee("Finished", "FIXED_TERM", "2026-01-01", companyID),
			employee("Eve", "PERMANENT", "2025-12-12", companyID),
		}
		lister := &fakeLister{listFn: func(ctx context.Context, cid string) ([]directory.Employee, error) {
			assert.Equal(t, companyID.String(), cid)
			return emps, nil
		}}
		svc := probation.NewServiceAt(lister, table, func() time.Time { return fixedNow }, zap.NewNop())

		got, err := svc.ListWindows(context.Background(), companyID.String())

		require.NoError(t, err)
		require.Len(t, got, 4)
		names := []string{got[0].EmployeeName, got[1].EmployeeName, got[2].EmployeeName, got[3].EmployeeName}
		assert.Equal(t, []string{"Eve", "Ada", "Intern", "Normal"}, names)

		assert.Equal(t, 2, got[0].DaysRemaining)
		assert.Equal(t, "critical", got[0].UrgencyLevel)

		assert.Equal(t, "2026-03-15", got[1].EndDate)
		assert.Equal(t, 5, got[1].DaysRemaining)
		assert.Equal(t, managerID.String(), got[1].ManagerID)

		assert.Equal(t, 30, got[2].TotalProbationDays)
		assert.Equal(t, "warning", got[2].UrgencyLevel)
		assert.Equal(t, 12, got[2].DaysRemaining)

		assert.Equal(t, "normal", got[3].UrgencyLevel)
		assert.Equal(t, 81, got[3].DaysRemaining)
	})

	t.Run("success empty company lists everyone", func(t *testing.T) {
		lister := &fakeLister{listFn: func(ctx context.Context, cid string) ([]directory.Employee, error) {
			assert.Empty(t, cid)
			return nil, nil
		}}
		svc := probation.NewServiceAt(lister, table, func() time.Time { return fixedNow })

		got, err := svc.ListWindows(context.Background(), "")

		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("negative invalid company id", func(t *testing.T) {
		svc := probation.NewServiceAt(&fakeLister{}, table, func() time.Time { return fixedNow })

		_, err := svc.ListWindows(context.Background(), "acme")

		assert.ErrorIs(t, err, probationerrors.ErrInvalidCompanyID)
	})

	t.Run("negative directory failure", func(t *testing.T) {
		boom := errors.New("db down")
		lister := &fakeLister{listFn: func(ctx context.Context, cid string) ([]directory.Employee, error) {
			return nil, boom
		}}
		svc := probation.NewServiceAt(lister, table, func() time.Time { return fixedNow })

		_, err := svc.ListWindows(context.Background(), companyID.String())

		assert.ErrorIs(t, err, boom)
	})
}

func TestService_Window(t *testing.T) {
	svc := probation.NewServiceAt(&fakeLister{}, table, func() time.Time { return fixedNow })
	days := func(n int) *int { return &n }

	t.Run("success", func(t *testing.T) {
		got, err := svc.Window(probation.WindowQuery{StartDate: "2026-03-01", TotalDays: days(30)})

		require.NoError(t, err)
		assert.Equal(t, "2026-03-31", got.EndDate)
		assert.Equal(t, 9, got.DaysCompleted)
		assert.Equal(t, 21, got.DaysRemaining)
		assert.Equal(t, 30, got.ProgressPercent)
		assert.Equal(t, "attention", got.UrgencyLevel)
	})

	t.Run("success zero length window is already over", func(t *testing.T) {
		got, err := svc.Window(probation.WindowQuery{StartDate: "2026-03-10", TotalDays: days(0)})

		require.NoError(t, err)
		assert.Equal(t, 0, got.DaysRemaining)
		assert.Equal(t, "critical", got.UrgencyLevel)
	})

	t.Run("negative bad date", func(t *testing.T) {
		_, err := svc.Window(probation.WindowQuery{StartDate: "10/03/2026", TotalDays: days(30)})
		assert.ErrorIs(t, err, probationerrors.ErrInvalidStartDate)
	})

	t.Run("negative total days", func(t *testing.T) {
		_, err := svc.Window(probation.WindowQuery{StartDate: "2026-03-01", TotalDays: days(-1)})
		assert.ErrorIs(t, err, probationerrors.ErrNegativeTotalDays)
	})
}
