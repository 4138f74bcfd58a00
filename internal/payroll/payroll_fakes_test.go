package payroll_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"go-payroll/internal/employee"
	"go-payroll/internal/loan"
	"go-payroll/internal/messaging/kafka"
	kafkamock "go-payroll/internal/messaging/kafka/mock"
	"go-payroll/internal/payroll"
	"go-payroll/internal/salarycomponent"
	"go-payroll/internal/shared/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func component(code string, typ salarycomponent.ComponentType, calc salarycomponent.CalculationType, value string, taxable bool) salarycomponent.ResolvedComponent {
	return salarycomponent.ResolvedComponent{
		Component: salarycomponent.SalaryComponent{
			ID:              uuid.New(),
			Code:            code,
			Name:            code,
			Type:            typ,
			CalculationType: calc,
			Value:           dec(value),
			Taxable:         taxable,
			ShowOnPayslip:   true,
		},
		Value:  dec(value),
		Source: salarycomponent.SourceScope,
	}
}

func formulaComponent(code string, typ salarycomponent.ComponentType, src string) salarycomponent.ResolvedComponent {
	rc := component(code, typ, salarycomponent.CalculationFormula, "0", false)
	rc.Component.Formula = &src
	return rc
}

// standardComponents is base, 10% taxable housing and 7.5% PAYE.
func standardComponents(base string) []salarycomponent.ResolvedComponent {
	basic := component("BASIC", salarycomponent.TypeEarning, salarycomponent.CalculationFixed, base, true)
	basic.Component.IsBase = true
	return []salarycomponent.ResolvedComponent{
		basic,
		component("HOUSING", salarycomponent.TypeEarning, salarycomponent.CalculationPercentage, "10", true),
		component("PAYE", salarycomponent.TypeTax, salarycomponent.CalculationPercentage, "7.5", false),
	}
}

func lineCodes(lines []payroll.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.ComponentCode
	}
	return out
}

// memoryRepository is safe for the concurrent workers of a run. Reads
// return copies.
type memoryRepository struct {
	mu       sync.Mutex
	periods  map[uuid.UUID]payroll.PayPeriod
	salaries map[uuid.UUID]payroll.Salary

	createSalaryErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		periods:  map[uuid.UUID]payroll.PayPeriod{},
		salaries: map[uuid.UUID]payroll.Salary{},
	}
}

func cloneSalary(s payroll.Salary) *payroll.Salary {
	s.Details = append([]payroll.SalaryDetail(nil), s.Details...)
	return &s
}

func (m *memoryRepository) WithTx(tx *sql.Tx) payroll.Repository { return m }

func (m *memoryRepository) CreatePeriod(ctx context.Context, p *payroll.PayPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now().UTC()
	m.periods[p.ID] = *p
	return nil
}

func (m *memoryRepository) findPeriod(companyID, id string) (*payroll.PayPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[uuid.MustParse(id)]
	if !ok || p.CompanyID.String() != companyID {
		return &payroll.PayPeriod{}, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (m *memoryRepository) FindPeriodByID(ctx context.Context, companyID, id string) (*payroll.PayPeriod, error) {
	return m.findPeriod(companyID, id)
}

func (m *memoryRepository) FindPeriodForShare(ctx context.Context, companyID, id string) (*payroll.PayPeriod, error) {
	return m.findPeriod(companyID, id)
}

func (m *memoryRepository) FindPeriods(ctx context.Context, companyID string, status payroll.PayPeriodStatus) ([]payroll.PayPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.PayPeriod
	for _, p := range m.periods {
		if p.CompanyID.String() == companyID && (status == "" || p.Status == status) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryRepository) HasOpenPeriod(ctx context.Context, companyID string) (bool, error) {
	open, err := m.FindPeriods(ctx, companyID, payroll.PeriodOpen)
	return len(open) > 0, err
}

func (m *memoryRepository) TransitionPeriod(ctx context.Context, companyID, id string, from, to payroll.PayPeriodStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.periods[uuid.MustParse(id)]
	if !ok || p.CompanyID.String() != companyID || p.Status != from {
		return false, nil
	}
	p.Status = to
	switch to {
	case payroll.PeriodProcessing:
		p.LockedAt = &at
	case payroll.PeriodClosed:
		p.ClosedAt = &at
	}
	m.periods[p.ID] = p
	return true, nil
}

func (m *memoryRepository) FindSalaryByID(ctx context.Context, companyID, id string, forUpdate bool) (*payroll.Salary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.salaries[uuid.MustParse(id)]
	if !ok || s.CompanyID.String() != companyID {
		return &payroll.Salary{}, gorm.ErrRecordNotFound
	}
	return cloneSalary(s), nil
}

func (m *memoryRepository) FindSalaryByEmployee(ctx context.Context, companyID, periodID, employeeID string, forUpdate bool) (*payroll.Salary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.salaries {
		if s.CompanyID.String() == companyID && s.PayPeriodID.String() == periodID && s.EmployeeID.String() == employeeID {
			return cloneSalary(s), nil
		}
	}
	return &payroll.Salary{}, gorm.ErrRecordNotFound
}

func (m *memoryRepository) FindSalaries(ctx context.Context, companyID string, filter payroll.SalaryFilter) ([]payroll.Salary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []payroll.Salary
	for _, s := range m.salaries {
		if s.CompanyID.String() != companyID {
			continue
		}
		if filter.PayPeriodID != "" && s.PayPeriodID.String() != filter.PayPeriodID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, *cloneSalary(s))
	}
	return out, nil
}

func (m *memoryRepository) CountUnsettled(ctx context.Context, companyID, periodID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, s := range m.salaries {
		if s.PayPeriodID.String() == periodID && !s.Status.Settled() {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepository) ReservedRepayments(ctx context.Context, companyID, employeeID, exceptPeriodID string) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []uuid.UUID
	for _, s := range m.salaries {
		if s.CompanyID.String() != companyID || s.EmployeeID.String() != employeeID || s.PayPeriodID.String() == exceptPeriodID {
			continue
		}
		if s.Status != payroll.SalaryDraft && s.Status != payroll.SalaryApproved {
			continue
		}
		for _, d := range s.Details {
			if d.LoanRepaymentID != nil {
				ids = append(ids, *d.LoanRepaymentID)
			}
		}
	}
	return ids, nil
}

func (m *memoryRepository) CreateSalary(ctx context.Context, s *payroll.Salary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createSalaryErr != nil {
		return m.createSalaryErr
	}
	m.salaries[s.ID] = *cloneSalary(*s)
	return nil
}

func (m *memoryRepository) UpdateSalary(ctx context.Context, s *payroll.Salary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.salaries[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c := *cloneSalary(*s)
	c.Details = stored.Details
	m.salaries[s.ID] = c
	return nil
}

func (m *memoryRepository) ReplaceDetails(ctx context.Context, salaryID string, details []payroll.SalaryDetail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.salaries[uuid.MustParse(salaryID)]
	s.Details = append([]payroll.SalaryDetail(nil), details...)
	m.salaries[s.ID] = s
	return nil
}

func (m *memoryRepository) MarkPayslipGenerated(ctx context.Context, companyID, id, url string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.salaries[uuid.MustParse(id)]
	if !ok || s.CompanyID.String() != companyID {
		return false, nil
	}
	s.PayslipStatus = payroll.PayslipGenerated
	s.PayslipURL = &url
	s.PayslipGeneratedAt = &at
	m.salaries[s.ID] = s
	return true, nil
}

func (m *memoryRepository) salaryOf(employeeID uuid.UUID) payroll.Salary {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.salaries {
		if s.EmployeeID == employeeID {
			return s
		}
	}
	return payroll.Salary{}
}

type fakeEmployeeService struct {
	eligible []employee.Employee
	err      error
}

func (f *fakeEmployeeService) GetByID(ctx context.Context, companyID, id string) (employee.Employee, error) {
	return employee.Employee{}, f.err
}

func (f *fakeEmployeeService) GetActive(ctx context.Context, companyID, id string) (employee.Employee, error) {
	return employee.Employee{}, f.err
}

func (f *fakeEmployeeService) ListEligible(ctx context.Context, companyID string, periodEnd time.Time) ([]employee.Employee, error) {
	return f.eligible, f.err
}

type fakeResolver struct {
	resolveFn func(ctx context.Context, empl employee.Employee, asOf time.Time) ([]salarycomponent.ResolvedComponent, error)
}

func (f *fakeResolver) Resolve(ctx context.Context, empl employee.Employee, asOf time.Time) ([]salarycomponent.ResolvedComponent, error) {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, empl, asOf)
	}
	return standardComponents("300000"), nil
}

type posting struct {
	loanID      string
	repaymentID string
	salaryID    uuid.UUID
}

// fakeLedger holds each employee's unpaid schedule rows in due order and,
// like the loan engine, offers the first row per loan that is neither
// posted nor reserved.
type fakeLedger struct {
	mu         sync.Mutex
	deductions map[uuid.UUID][]loan.Deduction
	posted     []posting
	reserved   [][]uuid.UUID
	postErr    error
}

func (f *fakeLedger) DueDeductions(ctx context.Context, companyID, employeeID string, periodEnd time.Time, reserved []uuid.UUID) ([]loan.Deduction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reserved = append(f.reserved, reserved)

	skip := map[uuid.UUID]bool{}
	for _, id := range reserved {
		skip[id] = true
	}
	for _, p := range f.posted {
		skip[uuid.MustParse(p.repaymentID)] = true
	}

	seen := map[uuid.UUID]bool{}
	var out []loan.Deduction
	for _, d := range f.deductions[uuid.MustParse(employeeID)] {
		if seen[d.LoanID] || skip[d.RepaymentID] {
			continue
		}
		seen[d.LoanID] = true
		if !d.DueDate.After(periodEnd) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeLedger) PostRepaymentTx(ctx context.Context, tx *sql.Tx, companyID, loanID, repaymentID string, paidDate time.Time, salaryID *uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return f.postErr
	}
	f.posted = append(f.posted, posting{loanID: loanID, repaymentID: repaymentID, salaryID: *salaryID})
	return nil
}

type payrollDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	repo      *memoryRepository
	employees *fakeEmployeeService
	resolver  *fakeResolver
	ledger    *fakeLedger
	companyID uuid.UUID

	mu     sync.Mutex
	topics []string
}

func newPayrollDeps(t *testing.T) *payrollDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	// Workers begin and commit concurrently.
	sqlMock.MatchExpectationsInOrder(false)

	return &payrollDeps{
		db:        db,
		sqlMock:   sqlMock,
		repo:      newMemoryRepository(),
		employees: &fakeEmployeeService{},
		resolver:  &fakeResolver{},
		ledger:    &fakeLedger{deductions: map[uuid.UUID][]loan.Deduction{}},
		companyID: uuid.New(),
	}
}

func (d *payrollDeps) service(t *testing.T, workers int, rdb *redis.Client) payroll.Service {
	t.Helper()
	ctrl := gomock.NewController(t)

	outbox := kafkamock.NewMockOutboxRepository(ctrl)
	outbox.EXPECT().WithTx(gomock.Any()).Return(outbox).AnyTimes()
	outbox.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e kafka.OutboxEvent) error {
			d.mu.Lock()
			d.topics = append(d.topics, e.Topic)
			d.mu.Unlock()
			return nil
		}).AnyTimes()

	return payroll.NewService(
		d.db,
		d.repo,
		d.employees,
		d.resolver,
		d.ledger,
		outbox,
		rdb,
		config.PayrollConfig{Workers: workers, RunLockTTL: time.Minute},
	)
}

func (d *payrollDeps) company() string { return d.companyID.String() }

func (d *payrollDeps) hire(n int) []employee.Employee {
	for i := 0; i < n; i++ {
		d.employees.eligible = append(d.employees.eligible, employee.Employee{
			ID:        uuid.New(),
			CompanyID: d.companyID,
			Status:    employee.StatusActive,
			HireDate:  date("2024-01-01"),
		})
	}
	return d.employees.eligible
}

func (d *payrollDeps) openPeriod(status payroll.PayPeriodStatus) payroll.PayPeriod {
	p := payroll.PayPeriod{
		ID:          uuid.New(),
		CompanyID:   d.companyID,
		Name:        "March 2026",
		StartDate:   date("2026-03-01"),
		EndDate:     date("2026-03-31"),
		PaymentDate: date("2026-03-31"),
		Status:      status,
	}
	d.repo.periods[p.ID] = p
	return p
}

// salary stores a calculated salary in the given status.
func (d *payrollDeps) salary(period payroll.PayPeriod, status payroll.SalaryStatus, details ...payroll.SalaryDetail) payroll.Salary {
	s := payroll.Salary{
		ID:              uuid.New(),
		CompanyID:       d.companyID,
		EmployeeID:      uuid.New(),
		PayPeriodID:     period.ID,
		GrossSalary:     dec("330000"),
		TotalDeductions: decimal.Zero,
		TotalTax:        dec("24750"),
		NetSalary:       dec("305250"),
		Status:          status,
		PayslipStatus:   payroll.PayslipNotRequested,
		Details:         details,
	}
	d.repo.salaries[s.ID] = s
	return s
}

func (d *payrollDeps) expectTxs(n int) {
	for i := 0; i < n; i++ {
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectCommit()
	}
}

func (d *payrollDeps) expectRollbacks(n int) {
	for i := 0; i < n; i++ {
		d.sqlMock.ExpectBegin()
		d.sqlMock.ExpectRollback()
	}
}

func (d *payrollDeps) publishedTopics() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.topics...)
}
