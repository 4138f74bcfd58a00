package salarycomponent_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-payroll/internal/employee"
	"go-payroll/internal/salarycomponent"
	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"
	"go-payroll/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func component(code string, typ salarycomponent.ComponentType, country string, sortOrder int) salarycomponent.SalaryComponent {
	c := salarycomponent.SalaryComponent{
		ID:              uuid.New(),
		Code:            code,
		Type:            typ,
		CalculationType: salarycomponent.CalculationFixed,
		Value:           decimal.NewFromInt(100),
		SortOrder:       sortOrder,
		Version:         1,
		ActiveFrom:      date("2025-01-01"),
	}
	if country != "" {
		c.Country = &country
	}
	return c
}

func baseComponent(country string, value int64) salarycomponent.SalaryComponent {
	c := component("BASIC", salarycomponent.TypeEarning, country, 0)
	c.IsBase = true
	c.Value = decimal.NewFromInt(value)
	return c
}

func codes(rcs []salarycomponent.ResolvedComponent) []string {
	out := make([]string, len(rcs))
	for i, rc := range rcs {
		out[i] = rc.Component.Code
	}
	return out
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	roleID := uuid.New()
	otherRole := uuid.New()
	empl := employee.Employee{ID: uuid.New(), CompanyID: uuid.New(), RoleID: &roleID, Country: "NG", Status: employee.StatusActive}
	asOf := date("2026-01-31")

	t.Run("scope and ordering", func(t *testing.T) {
		tax := component("PAYE", salarycomponent.TypeTax, "NG", 0)
		pension := component("PENSION", salarycomponent.TypeDeduction, "NG", 0)
		housing := component("HOUSING", salarycomponent.TypeEarning, "NG", 2)
		transport := component("TRANSPORT", salarycomponent.TypeEarning, "", 1)
		transport.RoleID = &roleID
		wrongRole := component("OVERTIME", salarycomponent.TypeEarning, "NG", 0)
		wrongRole.RoleID = &otherRole
		wrongCountry := component("HARDSHIP", salarycomponent.TypeEarning, "KE", 0)
		unscoped := component("BONUS", salarycomponent.TypeEarning, "", 0)
		expired := component("MEAL", salarycomponent.TypeEarning, "NG", 0)
		ended := date("2026-01-01")
		expired.ActiveTo = &ended

		repo := &fakeRepository{
			findScopedComponentsFn: func(ctx context.Context, cid string, rid *string, country string, on time.Time) ([]salarycomponent.SalaryComponent, error) {
				return []salarycomponent.SalaryComponent{
					pension, tax, housing, transport, wrongRole, wrongCountry, unscoped, expired, baseComponent("NG", 300000),
				}, nil
			},
		}

		got, err := salarycomponent.NewResolver(repo).Resolve(ctx, empl, asOf)
		require.NoError(t, err)
		assert.Equal(t, []string{"BASIC", "TRANSPORT", "HOUSING", "PAYE", "PENSION"}, codes(got))
		for _, rc := range got {
			assert.Equal(t, salarycomponent.SourceScope, rc.Source)
		}
	})

	t.Run("assignment overrides scoped value", func(t *testing.T) {
		assignmentID := uuid.New()
		repo := &fakeRepository{
			findScopedComponentsFn: func(ctx context.Context, cid string, rid *string, country string, on time.Time) ([]salarycomponent.SalaryComponent, error) {
				return []salarycomponent.SalaryComponent{baseComponent("NG", 300000)}, nil
			},
			findAssignmentsEffectiveOnFn: func(ctx context.Context, cid, eid string, on time.Time) ([]salarycomponent.EmployeeSalaryComponent, error) {
				return []salarycomponent.EmployeeSalaryComponent{
					{ID: assignmentID, ComponentCode: "BASIC", Value: decimal.NewFromInt(450000), EffectiveFrom: date("2025-06-01"), IsActive: true},
				}, nil
			},
		}

		got, err := salarycomponent.NewResolver(repo).Resolve(ctx, empl, asOf)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].Value.Equal(decimal.NewFromInt(450000)))
		assert.Equal(t, salarycomponent.SourceEmployee, got[0].Source)
		assert.Equal(t, assignmentID, *got[0].AssignmentID)
	})

	t.Run("unscoped component reaches employee through assignment", func(t *testing.T) {
		bonus := component("BONUS", salarycomponent.TypeEarning, "", 0)
		var asked []string
		repo := &fakeRepository{
			findScopedComponentsFn: func(ctx context.Context, cid string, rid *string, country string, on time.Time) ([]salarycomponent.SalaryComponent, error) {
				return []salarycomponent.SalaryComponent{baseComponent("NG", 300000)}, nil
			},
			findAssignmentsEffectiveOnFn: func(ctx context.Context, cid, eid string, on time.Time) ([]salarycomponent.EmployeeSalaryComponent, error) {
				return []salarycomponent.EmployeeSalaryComponent{
					{ID: uuid.New(), ComponentCode: "BONUS", Value: decimal.NewFromInt(5000), EffectiveFrom: date("2026-01-01"), IsActive: true},
				}, nil
			},
			findComponentsByCodesFn: func(ctx context.Context, cid string, c []string, on time.Time) ([]salarycomponent.SalaryComponent, error) {
				asked = c
				return []salarycomponent.SalaryComponent{bonus}, nil
			},
		}

		got, err := salarycomponent.NewResolver(repo).Resolve(ctx, empl, asOf)
		require.NoError(t, err)
		assert.Equal(t, []string{"BONUS"}, asked)
		assert.Equal(t, []string{"BASIC", "BONUS"}, codes(got))
		assert.True(t, got[1].Value.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("assigned code without active definition", func(t *testing.T) {
		repo := &fakeRepository{
			findScopedComponentsFn: func(ctx context.Context, cid string, rid *string, country string, on time.Time) ([]salarycomponent.SalaryComponent, error) {
				return []salarycomponent.SalaryComponent{baseComponent("NG", 300000)}, nil
			},
			findAssignmentsEffectiveOnFn: func(ctx context.Context, cid, eid string, on time.Time) ([]salarycomponent.EmployeeSalaryComponent, error) {
				return []salarycomponent.EmployeeSalaryComponent{
					{ID: uuid.New(), ComponentCode: "RETIRED", Value: decimal.NewFromInt(1), EffectiveFrom: date("2025-01-01"), IsActive: true},
				}, nil
			},
		}

		_, err := salarycomponent.NewResolver(repo).Resolve(ctx, empl, asOf)
		assert.ErrorIs(t, err, salarycomponenterrors.ErrComponentNotActive)
	})

	t.Run("missing base", func(t *testing.T) {
		repo := &fakeRepository{
			findScopedComponentsFn: func(ctx context.Context, cid string, rid *string, country string, on time.Time) ([]salarycomponent.SalaryComponent, error) {
				return []salarycomponent.SalaryComponent{component("HOUSING", salarycomponent.TypeEarning, "NG", 0)}, nil
			},
		}

		_, err := salarycomponent.NewResolver(repo).Resolve(ctx, empl, asOf)
		assert.ErrorIs(t, err, salarycomponenterrors.ErrMissingBase)
	})

	t.Run("multiple base", func(t *testing.T) {
		other := baseComponent("NG", 1)
		other.Code = "BASIC_ALT"
		repo := &fakeRepository{
			findScopedComponentsFn: func(ctx context.Context, cid string, rid *string, country string, on time.Time) ([]salarycomponent.SalaryComponent, error) {
				return []salarycomponent.SalaryComponent{baseComponent("NG", 300000), other}, nil
			},
		}

		_, err := salarycomponent.NewResolver(repo).Resolve(ctx, empl, asOf)
		assert.ErrorIs(t, err, salarycomponenterrors.ErrMultipleBase)
	})

	t.Run("two scoped definitions of one code", func(t *testing.T) {
		byRole := baseComponent("", 1)
		byRole.RoleID = &roleID
		repo := &fakeRepository{
			findScopedComponentsFn: func(ctx context.Context, cid string, rid *string, country string, on time.Time) ([]salarycomponent.SalaryComponent, error) {
				return []salarycomponent.SalaryComponent{baseComponent("NG", 300000), byRole}, nil
			},
		}

		_, err := salarycomponent.NewResolver(repo).Resolve(ctx, empl, asOf)
		assert.ErrorIs(t, err, salarycomponenterrors.ErrAmbiguousComponent)
	})

	t.Run("overlapping assignments", func(t *testing.T) {
		repo := &fakeRepository{
			findScopedComponentsFn: func(ctx context.Context, cid string, rid *string, country string, on time.Time) ([]salarycomponent.SalaryComponent, error) {
				return []salarycomponent.SalaryComponent{baseComponent("NG", 300000)}, nil
			},
			findAssignmentsEffectiveOnFn: func(ctx context.Context, cid, eid string, on time.Time) ([]salarycomponent.EmployeeSalaryComponent, error) {
				return []salarycomponent.EmployeeSalaryComponent{
					{ID: uuid.New(), ComponentCode: "BASIC", Value: decimal.NewFromInt(1), EffectiveFrom: date("2025-01-01")},
					{ID: uuid.New(), ComponentCode: "BASIC", Value: decimal.NewFromInt(2), EffectiveFrom: date("2025-06-01")},
				}, nil
			},
		}

		_, err := salarycomponent.NewResolver(repo).Resolve(ctx, empl, asOf)
		assert.ErrorIs(t, err, salarycomponenterrors.ErrOverlappingAssignments)
	})

	t.Run("repository failure is retryable", func(t *testing.T) {
		repo := &fakeRepository{
			findScopedComponentsFn: func(ctx context.Context, cid string, rid *string, country string, on time.Time) ([]salarycomponent.SalaryComponent, error) {
				return nil, errors.New("connection reset")
			},
		}

		_, err := salarycomponent.NewResolver(repo).Resolve(ctx, empl, asOf)
		assert.True(t, apperror.Retryable(err))
	})
}

func TestResolver_SharesScopedLookups(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	repo := &fakeRepository{
		findScopedComponentsFn: func(ctx context.Context, cid string, rid *string, country string, on time.Time) ([]salarycomponent.SalaryComponent, error) {
			calls.Add(1)
			<-release
			return []salarycomponent.SalaryComponent{baseComponent("NG", 300000)}, nil
		},
	}
	r := salarycomponent.NewResolver(repo)
	companyID := uuid.New()

	const n = 8
	var started, wg sync.WaitGroup
	started.Add(n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			empl := employee.Employee{ID: uuid.New(), CompanyID: companyID, Country: "NG"}
			started.Done()
			_, err := r.Resolve(context.Background(), empl, date("2026-01-31"))
			assert.NoError(t, err)
		}()
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Less(t, calls.Load(), int32(n))
}
