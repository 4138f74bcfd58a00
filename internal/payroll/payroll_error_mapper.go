package payroll

import (
	"errors"

	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// mapRepositoryError translates storage errors. notFound is returned for a
// missing row since periods and salaries share this mapper.
func mapRepositoryError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uq_pay_period_open":
			return payrollerrors.ErrOpenPeriodExists
		case "uq_salary_employee_period":
			return payrollerrors.ErrSalaryExists
		}
	}

	return apperror.Persistence(err)
}
