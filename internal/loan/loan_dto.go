package loan

import (
	"github.com/shopspring/decimal"
)

type ApplyLoanRequest struct {
	EmployeeID   string          `json:"employee_id" binding:"required,uuid"`
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermMonths   int             `json:"term_months" binding:"required,min=1,max=360"`
	Reason       string          `json:"reason" binding:"required,max=500"`
	Notes        *string         `json:"notes"`
}

// ApplyAdvanceRequest is a one-month, interest-free loan.
type ApplyAdvanceRequest struct {
	EmployeeID string          `json:"employee_id" binding:"required,uuid"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason" binding:"required,max=500"`
	Notes      *string         `json:"notes"`
}

type ApproveLoanRequest struct {
	Notes *string `json:"notes"`
}

type RejectLoanRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=500"`
}

type CancelLoanRequest struct {
	Notes *string `json:"notes"`
}

// DisburseLoanRequest defaults FirstRepaymentDate to the disbursement date
// for advances and one month later for loans.
type DisburseLoanRequest struct {
	DisbursementDate   string  `json:"disbursement_date" binding:"required,datetime=2006-01-02"`
	FirstRepaymentDate *string `json:"first_repayment_date" binding:"omitempty,datetime=2006-01-02"`
}

type PostRepaymentRequest struct {
	RepaymentID string `json:"repayment_id" binding:"required,uuid"`
	PaidDate    string `json:"paid_date" binding:"required,datetime=2006-01-02"`
}

type MarkMissedRequest struct {
	AsOf string `json:"as_of" binding:"omitempty,datetime=2006-01-02"`
}

type LoanQueryFilter struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED ACTIVE FULLY_PAID DEFAULTED CANCELLED"`
	LoanType   string `form:"loan_type" binding:"omitempty,oneof=STANDARD_LOAN SALARY_ADVANCE"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type RepaymentResponse struct {
	ID               string  `json:"id"`
	Sequence         int     `json:"sequence"`
	DueDate          string  `json:"due_date"`
	Amount           string  `json:"amount"`
	PrincipalPortion string  `json:"principal_portion"`
	InterestPortion  string  `json:"interest_portion"`
	BalanceAfter     string  `json:"balance_after"`
	Status           string  `json:"status"`
	StatusTone       string  `json:"status_tone"`
	PaidDate         *string `json:"paid_date,omitempty"`
	SalaryID         *string `json:"salary_id,omitempty"`
}

type LoanResponse struct {
	ID                 string              `json:"id"`
	LoanNumber         string              `json:"loan_number"`
	EmployeeID         string              `json:"employee_id"`
	LoanType           string              `json:"loan_type"`
	Amount             string              `json:"amount"`
	InterestRate       string              `json:"interest_rate"`
	TermMonths         int                 `json:"term_months"`
	TotalRepayable     string              `json:"total_repayable"`
	OutstandingBalance string              `json:"outstanding_balance"`
	MonthlyRepayment   string              `json:"monthly_repayment"`
	Status             string              `json:"status"`
	StatusTone         string              `json:"status_tone"`
	Reason             string              `json:"reason"`
	Notes              *string             `json:"notes,omitempty"`
	ApplicationDate    string              `json:"application_date"`
	ApprovedBy         *string             `json:"approved_by,omitempty"`
	ApprovalDate       *string             `json:"approval_date,omitempty"`
	DisbursementDate   *string             `json:"disbursement_date,omitempty"`
	FirstRepaymentDate *string             `json:"first_repayment_date,omitempty"`
	ClosedAt           *string             `json:"closed_at,omitempty"`
	Repayments         []RepaymentResponse `json:"repayments,omitempty"`
}

type SweepResult struct {
	LoansChecked     int `json:"loans_checked"`
	RepaymentsMissed int `json:"repayments_missed"`
	LoansDefaulted   int `json:"loans_defaulted"`
	Failures         int `json:"failures"`
}
