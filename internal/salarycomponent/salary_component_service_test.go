package salarycomponent_test

import (
	"context"
	"testing"
	"time"

	"go-payroll/internal/employee"
	formulaerrors "go-payroll/internal/formula/errors"
	"go-payroll/internal/salarycomponent"
	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSalaryComponentService_CreateComponent(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		var created *salarycomponent.SalaryComponent
		deps.repo.createComponentFn = func(ctx context.Context, c *salarycomponent.SalaryComponent) error {
			created = c
			return nil
		}

		resp, err := deps.service.CreateComponent(ctx, companyID, salarycomponent.CreateComponentRequest{
			Code:            "HOUSING",
			Name:            "Housing allowance",
			Type:            "EARNING",
			CalculationType: "PERCENTAGE",
			Value:           decimal.NewFromInt(10),
			Taxable:         true,
			Country:         strPtr("ng"),
			ActiveFrom:      "2026-01-01",
		})
		assert.NoError(t, err)
		assert.Equal(t, "HOUSING", resp.Code)
		assert.Equal(t, 1, resp.Version)
		assert.Equal(t, "2026-01-01", resp.ActiveFrom)
		assert.True(t, resp.ShowOnPayslip)
		assert.Equal(t, "NG", *created.Country)
	})

	tests := []struct {
		name string
		req  salarycomponent.CreateComponentRequest
		want error
	}{
		{
			name: "invalid code",
			req:  salarycomponent.CreateComponentRequest{Code: "9LIVES", Type: "EARNING", CalculationType: "FIXED"},
			want: salarycomponenterrors.ErrInvalidCode,
		},
		{
			name: "code shadows formula variable",
			req:  salarycomponent.CreateComponentRequest{Code: "grossSalary", Type: "EARNING", CalculationType: "FIXED"},
			want: salarycomponenterrors.ErrReservedCode,
		},
		{
			name: "code shadows function",
			req:  salarycomponent.CreateComponentRequest{Code: "round", Type: "EARNING", CalculationType: "FIXED"},
			want: salarycomponenterrors.ErrReservedCode,
		},
		{
			name: "negative fixed",
			req:  salarycomponent.CreateComponentRequest{Code: "BONUS", Type: "EARNING", CalculationType: "FIXED", Value: decimal.NewFromInt(-1)},
			want: salarycomponenterrors.ErrNegativeValue,
		},
		{
			name: "percentage over 100",
			req:  salarycomponent.CreateComponentRequest{Code: "TAX", Type: "TAX", CalculationType: "PERCENTAGE", Value: decimal.NewFromInt(101)},
			want: salarycomponenterrors.ErrPercentageOutOfRange,
		},
		{
			name: "formula missing",
			req:  salarycomponent.CreateComponentRequest{Code: "PENSION", Type: "DEDUCTION", CalculationType: "FORMULA"},
			want: salarycomponenterrors.ErrFormulaRequired,
		},
		{
			name: "formula does not parse",
			req:  salarycomponent.CreateComponentRequest{Code: "PENSION", Type: "DEDUCTION", CalculationType: "FORMULA", Formula: strPtr("baseSalary *")},
			want: formulaerrors.ErrSyntax,
		},
		{
			name: "base must be earning",
			req:  salarycomponent.CreateComponentRequest{Code: "BASIC", Type: "DEDUCTION", IsBase: true, CalculationType: "FIXED"},
			want: salarycomponenterrors.ErrBaseMustBeEarning,
		},
		{
			name: "base must be fixed",
			req:  salarycomponent.CreateComponentRequest{Code: "BASIC", Type: "EARNING", IsBase: true, CalculationType: "PERCENTAGE", Value: decimal.NewFromInt(10)},
			want: salarycomponenterrors.ErrBaseMustBeFixed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := setupServiceTest(t)
			defer deps.db.Close()

			deps.repo.createComponentFn = func(ctx context.Context, c *salarycomponent.SalaryComponent) error {
				t.Fatal("must not persist an invalid component")
				return nil
			}
			_, err := deps.service.CreateComponent(ctx, companyID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("duplicate code", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.codeExistsFn = func(ctx context.Context, cid, code string) (bool, error) { return true, nil }
		_, err := deps.service.CreateComponent(ctx, companyID, salarycomponent.CreateComponentRequest{
			Code: "BASIC", Name: "Basic", Type: "EARNING", IsBase: true, CalculationType: "FIXED", Value: decimal.NewFromInt(1000),
		})
		assert.ErrorIs(t, err, salarycomponenterrors.ErrComponentCodeExists)
	})
}

func TestSalaryComponentService_SupersedeComponent(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	currentID := uuid.New()

	current := func() *salarycomponent.SalaryComponent {
		return &salarycomponent.SalaryComponent{
			ID:              currentID,
			CompanyID:       companyID,
			Code:            "HOUSING",
			Name:            "Housing",
			Type:            salarycomponent.TypeEarning,
			CalculationType: salarycomponent.CalculationPercentage,
			Value:           decimal.NewFromInt(10),
			ShowOnPayslip:   true,
			Version:         2,
			ActiveFrom:      date("2025-01-01"),
		}
	}

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		deps.repo.findComponentByIDFn = func(ctx context.Context, cid, id string, forUpdate bool) (*salarycomponent.SalaryComponent, error) {
			assert.True(t, forUpdate)
			return current(), nil
		}
		var closedAt time.Time
		var successor string
		deps.repo.closeComponentVersionFn = func(ctx context.Context, cid, id string, activeTo time.Time, supersededByID string) error {
			assert.Equal(t, currentID.String(), id)
			closedAt = activeTo
			successor = supersededByID
			return nil
		}

		resp, err := deps.service.SupersedeComponent(ctx, companyID.String(), currentID.String(), salarycomponent.SupersedeComponentRequest{
			Name:            "Housing",
			CalculationType: "PERCENTAGE",
			Value:           decimal.NewFromInt(12),
			ActiveFrom:      "2026-01-01",
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, resp.Version)
		assert.Equal(t, "HOUSING", resp.Code)
		assert.Equal(t, "12", resp.Value)
		assert.Equal(t, date("2026-01-01"), closedAt)
		assert.Equal(t, resp.ID, successor)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("already superseded", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.findComponentByIDFn = func(ctx context.Context, cid, id string, forUpdate bool) (*salarycomponent.SalaryComponent, error) {
			c := current()
			next := uuid.New()
			c.SupersededByID = &next
			return c, nil
		}

		_, err := deps.service.SupersedeComponent(ctx, companyID.String(), currentID.String(), salarycomponent.SupersedeComponentRequest{
			Name: "Housing", CalculationType: "FIXED", ActiveFrom: "2026-01-01",
		})
		assert.ErrorIs(t, err, salarycomponenterrors.ErrComponentSuperseded)
	})

	t.Run("must start after current version", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.findComponentByIDFn = func(ctx context.Context, cid, id string, forUpdate bool) (*salarycomponent.SalaryComponent, error) {
			return current(), nil
		}

		_, err := deps.service.SupersedeComponent(ctx, companyID.String(), currentID.String(), salarycomponent.SupersedeComponentRequest{
			Name: "Housing", CalculationType: "FIXED", ActiveFrom: "2025-01-01",
		})
		assert.ErrorIs(t, err, salarycomponenterrors.ErrInvalidActiveFrom)
	})
}

func TestSalaryComponentService_AssignToEmployee(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	employeeID := uuid.New()
	componentID := uuid.New()

	component := &salarycomponent.SalaryComponent{
		ID:              componentID,
		CompanyID:       companyID,
		Code:            "BASIC",
		Type:            salarycomponent.TypeEarning,
		IsBase:          true,
		CalculationType: salarycomponent.CalculationFixed,
		ActiveFrom:      date("2024-01-01"),
	}

	setup := func(t *testing.T) *serviceDeps {
		deps := setupServiceTest(t)
		deps.employees.getByIDFn = func(ctx context.Context, cid, id string) (employee.Employee, error) {
			return employee.Employee{ID: employeeID, CompanyID: companyID, Status: employee.StatusActive}, nil
		}
		deps.repo.findComponentByIDFn = func(ctx context.Context, cid, id string, forUpdate bool) (*salarycomponent.SalaryComponent, error) {
			return component, nil
		}
		return deps
	}

	t.Run("closes the open assignment of the same code", func(t *testing.T) {
		deps := setup(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		openID := uuid.New()
		deps.repo.findLatestAssignmentFn = func(ctx context.Context, cid, eid, code string) (*salarycomponent.EmployeeSalaryComponent, error) {
			assert.Equal(t, "BASIC", code)
			return &salarycomponent.EmployeeSalaryComponent{ID: openID, ComponentCode: "BASIC", EffectiveFrom: date("2025-01-01"), IsActive: true}, nil
		}
		var closedID string
		var closedAt time.Time
		deps.repo.closeAssignmentFn = func(ctx context.Context, cid, id string, effectiveTo time.Time) error {
			closedID, closedAt = id, effectiveTo
			return nil
		}
		var created *salarycomponent.EmployeeSalaryComponent
		deps.repo.createAssignmentFn = func(ctx context.Context, a *salarycomponent.EmployeeSalaryComponent) error {
			created = a
			return nil
		}

		resp, err := deps.service.AssignToEmployee(ctx, companyID.String(), employeeID.String(), salarycomponent.AssignComponentRequest{
			ComponentID:   componentID.String(),
			Value:         decimal.NewFromInt(350000),
			EffectiveFrom: "2026-01-01",
		})
		assert.NoError(t, err)
		assert.Equal(t, openID.String(), closedID)
		assert.Equal(t, date("2026-01-01"), closedAt)
		assert.Equal(t, "BASIC", created.ComponentCode)
		assert.True(t, created.IsActive)
		assert.Equal(t, "350000", resp.Value)
		assert.Nil(t, resp.EffectiveTo)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("backdating before the open assignment is rejected", func(t *testing.T) {
		deps := setup(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.findLatestAssignmentFn = func(ctx context.Context, cid, eid, code string) (*salarycomponent.EmployeeSalaryComponent, error) {
			return &salarycomponent.EmployeeSalaryComponent{ID: uuid.New(), EffectiveFrom: date("2026-03-01"), IsActive: true}, nil
		}

		_, err := deps.service.AssignToEmployee(ctx, companyID.String(), employeeID.String(), salarycomponent.AssignComponentRequest{
			ComponentID: componentID.String(), Value: decimal.NewFromInt(1), EffectiveFrom: "2026-02-01",
		})
		assert.ErrorIs(t, err, salarycomponenterrors.ErrBackdatedAssignment)
	})

	t.Run("overlapping a closed assignment is rejected", func(t *testing.T) {
		deps := setup(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		ended := date("2026-03-01")
		deps.repo.findLatestAssignmentFn = func(ctx context.Context, cid, eid, code string) (*salarycomponent.EmployeeSalaryComponent, error) {
			return &salarycomponent.EmployeeSalaryComponent{ID: uuid.New(), EffectiveFrom: date("2026-01-01"), EffectiveTo: &ended}, nil
		}

		_, err := deps.service.AssignToEmployee(ctx, companyID.String(), employeeID.String(), salarycomponent.AssignComponentRequest{
			ComponentID: componentID.String(), Value: decimal.NewFromInt(1), EffectiveFrom: "2026-02-01",
		})
		assert.ErrorIs(t, err, salarycomponenterrors.ErrBackdatedAssignment)
	})

	t.Run("component not active on effective date", func(t *testing.T) {
		deps := setup(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.AssignToEmployee(ctx, companyID.String(), employeeID.String(), salarycomponent.AssignComponentRequest{
			ComponentID: componentID.String(), Value: decimal.NewFromInt(1), EffectiveFrom: "2023-06-01",
		})
		assert.ErrorIs(t, err, salarycomponenterrors.ErrComponentNotActive)
	})
}

func TestSalaryComponentService_EndAssignment(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.NewString()
	employeeID := uuid.NewString()
	assignmentID := uuid.New()

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, true)

		deps.repo.findAssignmentByIDFn = func(ctx context.Context, cid, eid, id string, forUpdate bool) (*salarycomponent.EmployeeSalaryComponent, error) {
			return &salarycomponent.EmployeeSalaryComponent{ID: assignmentID, EffectiveFrom: date("2026-01-01"), IsActive: true}, nil
		}

		resp, err := deps.service.EndAssignment(ctx, companyID, employeeID, assignmentID.String(), salarycomponent.EndAssignmentRequest{EffectiveTo: "2026-06-30"})
		assert.NoError(t, err)
		assert.Equal(t, "2026-06-30", *resp.EffectiveTo)
		assert.False(t, resp.IsActive)
	})

	t.Run("effective to is written once", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		ended := date("2026-03-01")
		deps.repo.findAssignmentByIDFn = func(ctx context.Context, cid, eid, id string, forUpdate bool) (*salarycomponent.EmployeeSalaryComponent, error) {
			return &salarycomponent.EmployeeSalaryComponent{ID: assignmentID, EffectiveFrom: date("2026-01-01"), EffectiveTo: &ended}, nil
		}

		_, err := deps.service.EndAssignment(ctx, companyID, employeeID, assignmentID.String(), salarycomponent.EndAssignmentRequest{EffectiveTo: "2026-06-30"})
		assert.ErrorIs(t, err, salarycomponenterrors.ErrAssignmentAlreadyEnded)
	})

	t.Run("must end after it starts", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()
		expectTx(t, deps.sqlMock, false)

		deps.repo.findAssignmentByIDFn = func(ctx context.Context, cid, eid, id string, forUpdate bool) (*salarycomponent.EmployeeSalaryComponent, error) {
			return &salarycomponent.EmployeeSalaryComponent{ID: assignmentID, EffectiveFrom: date("2026-01-01"), IsActive: true}, nil
		}

		_, err := deps.service.EndAssignment(ctx, companyID, employeeID, assignmentID.String(), salarycomponent.EndAssignmentRequest{EffectiveTo: "2026-01-01"})
		assert.ErrorIs(t, err, salarycomponenterrors.ErrInvalidEffectiveTo)
	})
}

func TestSalaryComponentService_EndAllForEmployee(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()
	expectTx(t, deps.sqlMock, true)

	current := uuid.New()
	future := uuid.New()
	deps.repo.findOpenAssignmentsFn = func(ctx context.Context, cid, eid string) ([]salarycomponent.EmployeeSalaryComponent, error) {
		return []salarycomponent.EmployeeSalaryComponent{
			{ID: current, EffectiveFrom: date("2025-01-01"), IsActive: true},
			{ID: future, EffectiveFrom: date("2026-09-01"), IsActive: true},
		}, nil
	}
	closed := map[uuid.UUID]time.Time{}
	deps.repo.closeAssignmentFn = func(ctx context.Context, cid, id string, effectiveTo time.Time) error {
		closed[uuid.MustParse(id)] = effectiveTo
		return nil
	}

	n, err := deps.service.EndAllForEmployee(context.Background(), uuid.NewString(), uuid.NewString(), time.Date(2026, 7, 1, 15, 30, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, date("2026-07-01"), closed[current])
	assert.Equal(t, date("2026-09-01"), closed[future])
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}
