package loanerrors

import (
	"net/http"

	"go-payroll/internal/shared/apperror"
)

var (
	ErrLoanNotFound = apperror.New(
		apperror.CodeNotFound,
		"Loan not found",
		http.StatusNotFound,
	)
	ErrRepaymentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Loan repayment not found",
		http.StatusNotFound,
	)
	ErrLoanNumberExists = apperror.New(
		apperror.CodeConflict,
		"Loan number already exists",
		http.StatusConflict,
	)

	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"Amount must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidInterestRate = apperror.New(
		apperror.CodeInvalidInput,
		"Interest rate must be between 0 and 100",
		http.StatusBadRequest,
	)
	ErrInvalidTerm = apperror.New(
		apperror.CodeInvalidInput,
		"Term must be at least one month and leave an installment of at least one cent",
		http.StatusBadRequest,
	)
	ErrAdvanceCapExceeded = apperror.New(
		apperror.CodeInvalidInput,
		"Salary advance exceeds the allowed maximum",
		http.StatusBadRequest,
	)
	ErrReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Reason is required",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrFirstRepaymentBeforeDisbursement = apperror.New(
		apperror.CodeInvalidInput,
		"First repayment date must not be before the disbursement date",
		http.StatusBadRequest,
	)
	ErrInvalidActor = apperror.New(
		apperror.CodeInvalidInput,
		"A valid acting user is required",
		http.StatusBadRequest,
	)

	ErrLoanNotPending = apperror.New(
		apperror.CodeInvalidTransition,
		"Only pending loans can be approved or rejected",
		http.StatusConflict,
	)
	ErrLoanNotApproved = apperror.New(
		apperror.CodeInvalidTransition,
		"Only approved loans can be disbursed",
		http.StatusConflict,
	)
	ErrLoanNotCancellable = apperror.New(
		apperror.CodeInvalidTransition,
		"Only loans that have not been disbursed can be cancelled",
		http.StatusConflict,
	)
	ErrLoanNotActive = apperror.New(
		apperror.CodeInvalidTransition,
		"Repayments can only be recorded on active loans",
		http.StatusConflict,
	)
	ErrRepaymentAlreadyPaid = apperror.New(
		apperror.CodeInvalidTransition,
		"Repayment is already paid",
		http.StatusConflict,
	)
	ErrNoRepaymentPastDue = apperror.New(
		apperror.CodeInvalidTransition,
		"No scheduled repayment is past due",
		http.StatusConflict,
	)
	ErrOutOfSequence = apperror.New(
		apperror.CodeOutOfSequence,
		"Repayments must be posted in due date order",
		http.StatusConflict,
	)
)
