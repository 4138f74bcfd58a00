package salarycomponent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go-payroll/internal/employee"
	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Resolver determines which components, with which values, apply to an
// employee on a date.
//
//go:generate mockgen -source=resolver.go -destination=mock/resolver_mock.go -package=mock
type Resolver interface {
	Resolve(ctx context.Context, empl employee.Employee, asOf time.Time) ([]ResolvedComponent, error)
}

type resolver struct {
	repo   Repository
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewResolver(repo Repository, logger ...*zap.Logger) Resolver {
	l := zap.L().Named("salarycomponent.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salarycomponent.resolver")
	}
	return &resolver{repo: repo, sf: &singleflight.Group{}, logger: l}
}

// scoped loads role/country components once per scope and date, however many
// employees of a payroll run ask for them at the same time. The returned
// slice is shared and must not be modified.
func (r *resolver) scoped(ctx context.Context, empl employee.Employee, asOf time.Time) ([]SalaryComponent, error) {
	var roleID *string
	roleKey := "-"
	if empl.RoleID != nil {
		s := empl.RoleID.String()
		roleID = &s
		roleKey = s
	}
	key := fmt.Sprintf("%s|%s|%s|%s", empl.CompanyID, roleKey, empl.Country, asOf.Format(dateLayout))

	v, err, _ := r.sf.Do(key, func() (any, error) {
		return r.repo.FindScopedComponents(ctx, empl.CompanyID.String(), roleID, empl.Country, asOf)
	})
	if err != nil {
		return nil, err
	}
	return v.([]SalaryComponent), nil
}

func (r *resolver) Resolve(ctx context.Context, empl employee.Employee, asOf time.Time) ([]ResolvedComponent, error) {
	asOf = Day(asOf)
	companyID := empl.CompanyID.String()
	employeeID := empl.ID.String()

	scoped, err := r.scoped(ctx, empl, asOf)
	if err != nil {
		r.logger.Error("resolve scoped components failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
	}

	assignments, err := r.repo.FindAssignmentsEffectiveOn(ctx, companyID, employeeID, asOf)
	if err != nil {
		r.logger.Error("resolve assignments failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}

	byCode := make(map[string]ResolvedComponent, len(scoped)+len(assignments))
	for _, c := range scoped {
		if !c.ActiveOn(asOf) || !c.AppliesTo(empl.RoleID, empl.Country) {
			continue
		}
		if _, dup := byCode[c.Code]; dup {
			return nil, fmt.Errorf("%w: %s", salarycomponenterrors.ErrAmbiguousComponent, c.Code)
		}
		byCode[c.Code] = ResolvedComponent{Component: c, Value: c.Value, Source: SourceScope}
	}

	assigned := make(map[string]EmployeeSalaryComponent, len(assignments))
	var missing []string
	for _, a := range assignments {
		if !a.EffectiveOn(asOf) {
			continue
		}
		if _, dup := assigned[a.ComponentCode]; dup {
			return nil, fmt.Errorf("%w: %s", salarycomponenterrors.ErrOverlappingAssignments, a.ComponentCode)
		}
		assigned[a.ComponentCode] = a
		if _, ok := byCode[a.ComponentCode]; !ok {
			missing = append(missing, a.ComponentCode)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		defs, err := r.repo.FindComponentsByCodes(ctx, companyID, missing, asOf)
		if err != nil {
			r.logger.Error("resolve assigned components failed", zap.String("employee_id", employeeID), zap.Error(err))
			return nil, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
		}
		for _, c := range defs {
			if !c.ActiveOn(asOf) {
				continue
			}
			if _, dup := byCode[c.Code]; dup {
				return nil, fmt.Errorf("%w: %s", salarycomponenterrors.ErrAmbiguousComponent, c.Code)
			}
			byCode[c.Code] = ResolvedComponent{Component: c, Value: c.Value}
		}
	}

	for code, a := range assigned {
		rc, ok := byCode[code]
		if !ok {
			return nil, fmt.Errorf("%w: %s on %s", salarycomponenterrors.ErrComponentNotActive, code, asOf.Format(dateLayout))
		}
		id := a.ID
		rc.Value = a.Value
		rc.Source = SourceEmployee
		rc.AssignmentID = &id
		byCode[code] = rc
	}

	out := make([]ResolvedComponent, 0, len(byCode))
	bases := 0
	for _, rc := range byCode {
		if rc.Component.IsBase {
			bases++
		}
		out = append(out, rc)
	}
	switch {
	case bases == 0:
		return nil, salarycomponenterrors.ErrMissingBase
	case bases > 1:
		return nil, salarycomponenterrors.ErrMultipleBase
	}

	SortForCalculation(out)
	return out, nil
}

func group(c SalaryComponent) int {
	switch {
	case c.IsBase:
		return 0
	case c.Type == TypeEarning:
		return 1
	case c.Type == TypeTax:
		return 2
	default:
		return 3
	}
}

// SortForCalculation orders components base first, then other earnings,
// taxes and deductions; within a group by SortOrder then Code.
func SortForCalculation(rcs []ResolvedComponent) {
	sort.SliceStable(rcs, func(i, j int) bool {
		a, b := rcs[i].Component, rcs[j].Component
		if ga, gb := group(a), group(b); ga != gb {
			return ga < gb
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Code < b.Code
	})
}
