package salarycomponent_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-payroll/internal/employee"
	"go-payroll/internal/salarycomponent"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepository struct {
	createComponentFn            func(ctx context.Context, c *salarycomponent.SalaryComponent) error
	closeComponentVersionFn      func(ctx context.Context, companyID, id string, activeTo time.Time, supersededByID string) error
	findComponentByIDFn          func(ctx context.Context, companyID, id string, forUpdate bool) (*salarycomponent.SalaryComponent, error)
	codeExistsFn                 func(ctx context.Context, companyID, code string) (bool, error)
	findComponentsFn             func(ctx context.Context, companyID string, filter salarycomponent.ComponentFilter) ([]salarycomponent.SalaryComponent, error)
	findScopedComponentsFn       func(ctx context.Context, companyID string, roleID *string, country string, asOf time.Time) ([]salarycomponent.SalaryComponent, error)
	findComponentsByCodesFn      func(ctx context.Context, companyID string, codes []string, asOf time.Time) ([]salarycomponent.SalaryComponent, error)
	createAssignmentFn           func(ctx context.Context, a *salarycomponent.EmployeeSalaryComponent) error
	closeAssignmentFn            func(ctx context.Context, companyID, id string, effectiveTo time.Time) error
	findAssignmentByIDFn         func(ctx context.Context, companyID, employeeID, id string, forUpdate bool) (*salarycomponent.EmployeeSalaryComponent, error)
	findLatestAssignmentFn       func(ctx context.Context, companyID, employeeID, code string) (*salarycomponent.EmployeeSalaryComponent, error)
	findOpenAssignmentsFn        func(ctx context.Context, companyID, employeeID string) ([]salarycomponent.EmployeeSalaryComponent, error)
	findAssignmentsEffectiveOnFn func(ctx context.Context, companyID, employeeID string, asOf time.Time) ([]salarycomponent.EmployeeSalaryComponent, error)
	findAssignmentsFn            func(ctx context.Context, companyID, employeeID string) ([]salarycomponent.EmployeeSalaryComponent, error)
}

func (f *fakeRepository) WithTx(tx *sql.Tx) salarycomponent.Repository { return f }

func (f *fakeRepository) CreateComponent(ctx context.Context, c *salarycomponent.SalaryComponent) error {
	if f.createComponentFn != nil {
		return f.createComponentFn(ctx, c)
	}
	return nil
}

func (f *fakeRepository) CloseComponentVersion(ctx context.Context, companyID, id string, activeTo time.Time, supersededByID string) error {
	if f.closeComponentVersionFn != nil {
		return f.closeComponentVersionFn(ctx, companyID, id, activeTo, supersededByID)
	}
	return nil
}

func (f *fakeRepository) FindComponentByID(ctx context.Context, companyID, id string, forUpdate bool) (*salarycomponent.SalaryComponent, error) {
	if f.findComponentByIDFn != nil {
		return f.findComponentByIDFn(ctx, companyID, id, forUpdate)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) CodeExists(ctx context.Context, companyID, code string) (bool, error) {
	if f.codeExistsFn != nil {
		return f.codeExistsFn(ctx, companyID, code)
	}
	return false, nil
}

func (f *fakeRepository) FindComponents(ctx context.Context, companyID string, filter salarycomponent.ComponentFilter) ([]salarycomponent.SalaryComponent, error) {
	if f.findComponentsFn != nil {
		return f.findComponentsFn(ctx, companyID, filter)
	}
	return nil, nil
}

func (f *fakeRepository) FindScopedComponents(ctx context.Context, companyID string, roleID *string, country string, asOf time.Time) ([]salarycomponent.SalaryComponent, error) {
	if f.findScopedComponentsFn != nil {
		return f.findScopedComponentsFn(ctx, companyID, roleID, country, asOf)
	}
	return nil, nil
}

func (f *fakeRepository) FindComponentsByCodes(ctx context.Context, companyID string, codes []string, asOf time.Time) ([]salarycomponent.SalaryComponent, error) {
	if f.findComponentsByCodesFn != nil {
		return f.findComponentsByCodesFn(ctx, companyID, codes, asOf)
	}
	return nil, nil
}

func (f *fakeRepository) CreateAssignment(ctx context.Context, a *salarycomponent.EmployeeSalaryComponent) error {
	if f.createAssignmentFn != nil {
		return f.createAssignmentFn(ctx, a)
	}
	return nil
}

func (f *fakeRepository) CloseAssignment(ctx context.Context, companyID, id string, effectiveTo time.Time) error {
	if f.closeAssignmentFn != nil {
		return f.closeAssignmentFn(ctx, companyID, id, effectiveTo)
	}
	return nil
}

func (f *fakeRepository) FindAssignmentByID(ctx context.Context, companyID, employeeID, id string, forUpdate bool) (*salarycomponent.EmployeeSalaryComponent, error) {
	if f.findAssignmentByIDFn != nil {
		return f.findAssignmentByIDFn(ctx, companyID, employeeID, id, forUpdate)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindLatestAssignment(ctx context.Context, companyID, employeeID, code string) (*salarycomponent.EmployeeSalaryComponent, error) {
	if f.findLatestAssignmentFn != nil {
		return f.findLatestAssignmentFn(ctx, companyID, employeeID, code)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindOpenAssignments(ctx context.Context, companyID, employeeID string) ([]salarycomponent.EmployeeSalaryComponent, error) {
	if f.findOpenAssignmentsFn != nil {
		return f.findOpenAssignmentsFn(ctx, companyID, employeeID)
	}
	return nil, nil
}

func (f *fakeRepository) FindAssignmentsEffectiveOn(ctx context.Context, companyID, employeeID string, asOf time.Time) ([]salarycomponent.EmployeeSalaryComponent, error) {
	if f.findAssignmentsEffectiveOnFn != nil {
		return f.findAssignmentsEffectiveOnFn(ctx, companyID, employeeID, asOf)
	}
	return nil, nil
}

func (f *fakeRepository) FindAssignments(ctx context.Context, companyID, employeeID string) ([]salarycomponent.EmployeeSalaryComponent, error) {
	if f.findAssignmentsFn != nil {
		return f.findAssignmentsFn(ctx, companyID, employeeID)
	}
	return nil, nil
}

type fakeEmployeeService struct {
	getByIDFn func(ctx context.Context, companyID, id string) (employee.Employee, error)
}

func (f *fakeEmployeeService) GetByID(ctx context.Context, companyID, id string) (employee.Employee, error) {
	return f.getByIDFn(ctx, companyID, id)
}

func (f *fakeEmployeeService) GetActive(ctx context.Context, companyID, id string) (employee.Employee, error) {
	return f.getByIDFn(ctx, companyID, id)
}

func (f *fakeEmployeeService) ListEligible(ctx context.Context, companyID string, periodEnd time.Time) ([]employee.Employee, error) {
	return nil, nil
}

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	repo      *fakeRepository
	employees *fakeEmployeeService
	service   salarycomponent.Service
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeRepository{}
	employees := &fakeEmployeeService{}
	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		repo:      repo,
		employees: employees,
		service:   salarycomponent.NewService(db, repo, employees),
	}
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

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func strPtr(s string) *string { return &s }
