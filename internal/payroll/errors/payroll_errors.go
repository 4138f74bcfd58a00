package payrollerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"Pay period not found",
		http.StatusNotFound,
	)
	ErrSalaryNotFound = apperror.New(
		apperror.CodeNotFound,
		"Salary not found",
		http.StatusNotFound,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidPeriodWindow = apperror.New(
		apperror.CodeInvalidInput,
		"Pay period must satisfy start_date <= end_date <= payment_date",
		http.StatusBadRequest,
	)
	ErrPeriodNameRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Pay period name is required",
		http.StatusBadRequest,
	)
	ErrInvalidActor = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid actor id",
		http.StatusBadRequest,
	)
	ErrApproverRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Approver is required",
		http.StatusBadRequest,
	)
	ErrPaymentReferenceRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Payment reference is required",
		http.StatusBadRequest,
	)
	ErrBulkPaymentEmpty = apperror.New(
		apperror.CodeInvalidInput,
		"At least one payment is required",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"Status must be one of DRAFT, APPROVED, PAID, CANCELLED",
		http.StatusBadRequest,
	)

	ErrOpenPeriodExists = apperror.New(
		apperror.CodeConflict,
		"The company already has an open pay period",
		http.StatusConflict,
	)
	ErrSalaryExists = apperror.New(
		apperror.CodeConflict,
		"A salary already exists for this employee and period",
		http.StatusConflict,
	)
	ErrRunInProgress = apperror.New(
		apperror.CodeConflict,
		"A payroll run for this period is already in progress",
		http.StatusConflict,
	)

	ErrPeriodNotOpen = apperror.New(
		apperror.CodeInvalidTransition,
		"Only open pay periods can be processed or locked",
		http.StatusConflict,
	)
	ErrPeriodNotProcessing = apperror.New(
		apperror.CodeInvalidTransition,
		"Only processing pay periods can be closed",
		http.StatusConflict,
	)
	ErrPeriodHasUnsettledSalaries = apperror.New(
		apperror.CodeInvalidTransition,
		"Every salary of the period must be paid or cancelled before closing",
		http.StatusConflict,
	)
	ErrSalaryNotDraft = apperror.New(
		apperror.CodeInvalidTransition,
		"Only draft salaries can be approved",
		http.StatusConflict,
	)
	ErrSalaryNotApproved = apperror.New(
		apperror.CodeInvalidTransition,
		"Only approved salaries can be paid",
		http.StatusConflict,
	)
	ErrSalaryNotCancellable = apperror.New(
		apperror.CodeInvalidTransition,
		"Only draft or approved salaries can be cancelled",
		http.StatusConflict,
	)

	ErrBaseNotFixed = apperror.New(
		apperror.CodeCalculation,
		"The base component must use FIXED calculation",
		http.StatusUnprocessableEntity,
	)
	ErrUnsupportedCalculation = apperror.New(
		apperror.CodeCalculation,
		"Unsupported calculation type",
		http.StatusUnprocessableEntity,
	)
	ErrNegativeComponent = apperror.New(
		apperror.CodeCalculation,
		"A component evaluated to a negative amount",
		http.StatusUnprocessableEntity,
	)
	ErrNegativeNet = apperror.New(
		apperror.CodeCalculation,
		"Deductions and taxes exceed gross salary",
		http.StatusUnprocessableEntity,
	)
)
