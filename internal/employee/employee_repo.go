package employee

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/shared/txdb"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error)
	FindEligibleForPeriod(ctx context.Context, companyID string, periodEnd time.Time) ([]Employee, error)
	FindRole(ctx context.Context, companyID string, roleID string) (*Role, error)
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

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error) {
	db, cancel := txdb.Session(ctx, r.db, r.tx, r.timeout)
	defer cancel()

	var empl Employee
	err := db.Scopes(tenant.Scope(companyID)).
		First(&empl, "id = ?", id).Error
	return &empl, err
}

func (r *repository) FindEligibleForPeriod(ctx context.Context, companyID string, periodEnd time.Time) ([]Employee, error) {
	db, cancel := txdb.Session(ctx, r.db, r.tx, r.timeout)
	defer cancel()

	var empls []Employee
	err := db.Scopes(tenant.Scope(companyID)).
		Where("status = ?", StatusActive).
		Where("hire_date <= ?", periodEnd).
		Where("termination_date IS NULL OR termination_date > ?", periodEnd).
		Order("full_name ASC, id ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindRole(ctx context.Context, companyID string, roleID string) (*Role, error) {
	db, cancel := txdb.Session(ctx, r.db, r.tx, r.timeout)
	defer cancel()

	var role Role
	err := db.Scopes(tenant.Scope(companyID)).
		First(&role, "id = ?", roleID).Error
	return &role, err
}
