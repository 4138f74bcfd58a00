package loan

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/shared/txdb"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=loan_repo.go -destination=mock/loan_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	Create(ctx context.Context, loan *Loan) error
	Update(ctx context.Context, loan *Loan) error
	FindByID(ctx context.Context, companyID, id string, forUpdate bool) (*Loan, error)
	FindAll(ctx context.Context, companyID string, filter LoanFilter) ([]Loan, error)
	FindActiveByEmployee(ctx context.Context, companyID, employeeID string) ([]Loan, error)
	FindPastDue(ctx context.Context, cutoff time.Time, limit int) ([]Ref, error)

	CreateRepayments(ctx context.Context, rows []LoanRepayment) error
	UpdateRepayment(ctx context.Context, row *LoanRepayment) error
}

type LoanFilter struct {
	EmployeeID string
	Status     LoanStatus
	LoanType   LoanType
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

func orderedRepayments(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC")
}

func (r *repository) Create(ctx context.Context, loan *Loan) error {
	db, cancel := r.session(ctx)
	defer cancel()
	return db.Omit(clause.Associations).Create(loan).Error
}

func (r *repository) Update(ctx context.Context, loan *Loan) error {
	db, cancel := r.session(ctx)
	defer cancel()

	loan.UpdatedAt = time.Now().UTC()
	return db.Omit(clause.Associations).Save(loan).Error
}

// FindByID loads a loan with its schedule. forUpdate locks the loan row,
// which serializes disbursement and posting across processes.
func (r *repository) FindByID(ctx context.Context, companyID, id string, forUpdate bool) (*Loan, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	q := db.Scopes(tenant.Scope(companyID))
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var loan Loan
	if err := q.First(&loan, "id = ?", id).Error; err != nil {
		return &loan, err
	}

	err := db.Scopes(orderedRepayments).
		Where("loan_id = ?", loan.ID).
		Find(&loan.Repayments).Error
	return &loan, err
}

func (r *repository) FindAll(ctx context.Context, companyID string, filter LoanFilter) ([]Loan, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	q := db.Scopes(tenant.Scope(companyID))
	if filter.EmployeeID != "" {
		q = q.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.LoanType != "" {
		q = q.Where("loan_type = ?", filter.LoanType)
	}

	var loans []Loan
	err := q.Order("application_date DESC, loan_number DESC").Find(&loans).Error
	return loans, err
}

func (r *repository) FindActiveByEmployee(ctx context.Context, companyID, employeeID string) ([]Loan, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var loans []Loan
	err := db.Scopes(tenant.Scope(companyID)).
		Where("employee_id = ? AND status = ?", employeeID, StatusActive).
		Preload("Repayments", orderedRepayments).
		Order("disbursement_date ASC, loan_number ASC").
		Find(&loans).Error
	return loans, err
}

// FindPastDue lists active loans of every company that still have a
// scheduled repayment due before cutoff.
func (r *repository) FindPastDue(ctx context.Context, cutoff time.Time, limit int) ([]Ref, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var refs []Ref
	err := db.Table("loans").
		Select("DISTINCT loans.id, loans.company_id").
		Joins("JOIN loan_repayments ON loan_repayments.loan_id = loans.id").
		Where("loans.status = ?", StatusActive).
		Where("loan_repayments.status = ? AND loan_repayments.due_date < ?", RepaymentScheduled, cutoff).
		Limit(limit).
		Scan(&refs).Error
	return refs, err
}

func (r *repository) CreateRepayments(ctx context.Context, rows []LoanRepayment) error {
	db, cancel := r.session(ctx)
	defer cancel()
	return db.Create(&rows).Error
}

func (r *repository) UpdateRepayment(ctx context.Context, row *LoanRepayment) error {
	db, cancel := r.session(ctx)
	defer cancel()

	row.UpdatedAt = time.Now().UTC()
	return db.Model(&LoanRepayment{}).
		Where("id = ? AND loan_id = ?", row.ID, row.LoanID).
		Updates(map[string]any{
			"status":     row.Status,
			"paid_date":  row.PaidDate,
			"salary_id":  row.SalaryID,
			"updated_at": row.UpdatedAt,
		}).Error
}
