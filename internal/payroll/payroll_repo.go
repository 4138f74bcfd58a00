package payroll

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/shared/txdb"
	"go-payroll/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreatePeriod(ctx context.Context, p *PayPeriod) error
	FindPeriodByID(ctx context.Context, companyID, id string) (*PayPeriod, error)
	// FindPeriodForShare takes a shared lock on the period row so a
	// concurrent status transition waits for the caller's transaction.
	FindPeriodForShare(ctx context.Context, companyID, id string) (*PayPeriod, error)
	FindPeriods(ctx context.Context, companyID string, status PayPeriodStatus) ([]PayPeriod, error)
	HasOpenPeriod(ctx context.Context, companyID string) (bool, error)
	// TransitionPeriod moves a period from one status to another only if it
	// is still in from. It reports whether the row changed.
	TransitionPeriod(ctx context.Context, companyID, id string, from, to PayPeriodStatus, at time.Time) (bool, error)

	FindSalaryByID(ctx context.Context, companyID, id string, forUpdate bool) (*Salary, error)
	FindSalaryByEmployee(ctx context.Context, companyID, periodID, employeeID string, forUpdate bool) (*Salary, error)
	FindSalaries(ctx context.Context, companyID string, filter SalaryFilter) ([]Salary, error)
	CountUnsettled(ctx context.Context, companyID, periodID string) (int64, error)
	// ReservedRepayments lists loan repayments carried by the employee's
	// DRAFT or APPROVED salaries outside exceptPeriodID.
	ReservedRepayments(ctx context.Context, companyID, employeeID, exceptPeriodID string) ([]uuid.UUID, error)
	CreateSalary(ctx context.Context, s *Salary) error
	UpdateSalary(ctx context.Context, s *Salary) error
	ReplaceDetails(ctx context.Context, salaryID string, details []SalaryDetail) error
	MarkPayslipGenerated(ctx context.Context, companyID, id, url string, at time.Time) (bool, error)
}

type SalaryFilter struct {
	PayPeriodID string
	EmployeeID  string
	Status      SalaryStatus
}

type repository struct {
	db      *gorm.DB
	tx      *sql.Tx
	timeout time.Duration
}

func NewRepository(db *gorm.DB, timeout time.Duration) Repository {
	return &repository{db: db, timeout: timeout}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db:      r.db,
		tx:      tx,
		timeout: r.timeout,
	}
}

func (r *repository) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	return txdb.Session(ctx, r.db, r.tx, r.timeout)
}

func orderedDetails(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC")
}

func (r *repository) CreatePeriod(ctx context.Context, p *PayPeriod) error {
	db, cancel := r.session(ctx)
	defer cancel()
	return db.Create(p).Error
}

func (r *repository) FindPeriodByID(ctx context.Context, companyID, id string) (*PayPeriod, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var p PayPeriod
	err := db.Scopes(tenant.Scope(companyID)).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) FindPeriodForShare(ctx context.Context, companyID, id string) (*PayPeriod, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var p PayPeriod
	err := db.Scopes(tenant.Scope(companyID)).
		Clauses(clause.Locking{Strength: "SHARE"}).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) FindPeriods(ctx context.Context, companyID string, status PayPeriodStatus) ([]PayPeriod, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	q := db.Scopes(tenant.Scope(companyID))
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var periods []PayPeriod
	err := q.Order("start_date DESC").Find(&periods).Error
	return periods, err
}

func (r *repository) HasOpenPeriod(ctx context.Context, companyID string) (bool, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var count int64
	err := db.Model(&PayPeriod{}).
		Scopes(tenant.Scope(companyID)).
		Where("status = ?", PeriodOpen).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) TransitionPeriod(ctx context.Context, companyID, id string, from, to PayPeriodStatus, at time.Time) (bool, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	updates := map[string]any{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case PeriodProcessing:
		updates["locked_at"] = at
	case PeriodClosed:
		updates["closed_at"] = at
	}

	res := db.Model(&PayPeriod{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func (r *repository) FindSalaryByID(ctx context.Context, companyID, id string, forUpdate bool) (*Salary, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	q := db.Scopes(tenant.Scope(companyID))
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var s Salary
	if err := q.First(&s, "id = ?", id).Error; err != nil {
		return &s, err
	}

	err := db.Scopes(orderedDetails).
		Where("salary_id = ?", s.ID).
		Find(&s.Details).Error
	return &s, err
}

func (r *repository) FindSalaryByEmployee(ctx context.Context, companyID, periodID, employeeID string, forUpdate bool) (*Salary, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	q := db.Scopes(tenant.Scope(companyID))
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var s Salary
	err := q.Where("pay_period_id = ? AND employee_id = ?", periodID, employeeID).
		First(&s).Error
	return &s, err
}

func (r *repository) FindSalaries(ctx context.Context, companyID string, filter SalaryFilter) ([]Salary, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	q := db.Scopes(tenant.Scope(companyID))
	if filter.PayPeriodID != "" {
		q = q.Where("pay_period_id = ?", filter.PayPeriodID)
	}
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var salaries []Salary
	err := q.Preload("Details", orderedDetails).
		Order("created_at DESC, id ASC").
		Find(&salaries).Error
	return salaries, err
}

func (r *repository) CountUnsettled(ctx context.Context, companyID, periodID string) (int64, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var count int64
	err := db.Model(&Salary{}).
		Scopes(tenant.Scope(companyID)).
		Where("pay_period_id = ?", periodID).
		Where("status NOT IN ?", []SalaryStatus{SalaryPaid, SalaryCancelled}).
		Count(&count).Error
	return count, err
}

func (r *repository) ReservedRepayments(ctx context.Context, companyID, employeeID, exceptPeriodID string) ([]uuid.UUID, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var ids []uuid.UUID
	err := db.Table("salary_details").
		Joins("JOIN salaries ON salaries.id = salary_details.salary_id").
		Scopes(tenant.TableScope("salaries", companyID)).
		Where("salaries.employee_id = ? AND salaries.pay_period_id <> ?", employeeID, exceptPeriodID).
		Where("salaries.status IN ?", []SalaryStatus{SalaryDraft, SalaryApproved}).
		Where("salary_details.loan_repayment_id IS NOT NULL").
		Pluck("salary_details.loan_repayment_id", &ids).Error
	return ids, err
}

func (r *repository) CreateSalary(ctx context.Context, s *Salary) error {
	db, cancel := r.session(ctx)
	defer cancel()
	return db.Omit(clause.Associations).Create(s).Error
}

func (r *repository) UpdateSalary(ctx context.Context, s *Salary) error {
	db, cancel := r.session(ctx)
	defer cancel()

	s.UpdatedAt = time.Now().UTC()
	return db.Omit(clause.Associations).Save(s).Error
}

// ReplaceDetails rewrites a salary's lines. Details are never edited in place.
func (r *repository) ReplaceDetails(ctx context.Context, salaryID string, details []SalaryDetail) error {
	db, cancel := r.session(ctx)
	defer cancel()

	if err := db.Where("salary_id = ?", salaryID).Delete(&SalaryDetail{}).Error; err != nil {
		return err
	}
	if len(details) == 0 {
		return nil
	}
	return db.Create(&details).Error
}

func (r *repository) MarkPayslipGenerated(ctx context.Context, companyID, id, url string, at time.Time) (bool, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	res := db.Model(&Salary{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Updates(map[string]any{
			"payslip_status":       PayslipGenerated,
			"payslip_url":          url,
			"payslip_generated_at": at,
			"updated_at":           at,
		})
	return res.RowsAffected == 1, res.Error
}
