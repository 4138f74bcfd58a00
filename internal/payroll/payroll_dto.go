package payroll

import "github.com/shopspring/decimal"

type CreatePeriodRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	StartDate   string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" binding:"required,datetime=2006-01-02"`
	PaymentDate string `json:"payment_date" binding:"required,datetime=2006-01-02"`
}

type PeriodQueryFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=OPEN PROCESSING CLOSED"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

type ProcessRequest struct {
	DryRun bool `json:"dry_run"`
}

// ApproveSalaryRequest defaults ApproverID to the authenticated user.
type ApproveSalaryRequest struct {
	ApproverID string  `json:"approver_id" binding:"omitempty,uuid"`
	Notes      *string `json:"notes"`
}

type PaySalaryRequest struct {
	PaymentReference string  `json:"payment_reference" binding:"required,max=100"`
	Notes            *string `json:"notes"`
}

type CancelSalaryRequest struct {
	Notes *string `json:"notes"`
}

type BulkPaymentItem struct {
	SalaryID         string `json:"salary_id" binding:"required,uuid"`
	PaymentReference string `json:"payment_reference" binding:"required,max=100"`
}

type BulkPaymentRequest struct {
	Payments []BulkPaymentItem `json:"payments" binding:"required,min=1,max=500,dive"`
}

type SalaryQueryFilter struct {
	PayPeriodID string `form:"pay_period_id" binding:"omitempty,uuid"`
	EmployeeID  string `form:"employee_id" binding:"omitempty,uuid"`
	Status      string `form:"status" binding:"omitempty,oneof=DRAFT APPROVED PAID CANCELLED"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

type PayPeriodResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	PaymentDate string  `json:"payment_date"`
	Status      string  `json:"status"`
	StatusTone  string  `json:"status_tone"`
	LockedAt    *string `json:"locked_at,omitempty"`
	ClosedAt    *string `json:"closed_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

type SalaryDetailResponse struct {
	ComponentCode   string  `json:"component_code"`
	ComponentName   string  `json:"component_name"`
	ComponentType   string  `json:"component_type"`
	Amount          string  `json:"amount"`
	ShowOnPayslip   bool    `json:"show_on_payslip"`
	LoanID          *string `json:"loan_id,omitempty"`
	LoanRepaymentID *string `json:"loan_repayment_id,omitempty"`
}

type SalaryResponse struct {
	ID                string                 `json:"id"`
	EmployeeID        string                 `json:"employee_id"`
	PayPeriodID       string                 `json:"pay_period_id"`
	GrossSalary       string                 `json:"gross_salary"`
	TotalDeductions   string                 `json:"total_deductions"`
	TotalTax          string                 `json:"total_tax"`
	NetSalary         string                 `json:"net_salary"`
	Status            string                 `json:"status"`
	StatusTone        string                 `json:"status_tone"`
	CalculatedAt      string                 `json:"calculated_at"`
	ApprovedBy        *string                `json:"approved_by,omitempty"`
	ApprovedAt        *string                `json:"approved_at,omitempty"`
	PaidAt            *string                `json:"paid_at,omitempty"`
	PaymentReference  *string                `json:"payment_reference,omitempty"`
	Notes             *string                `json:"notes,omitempty"`
	PayslipStatus     string                 `json:"payslip_status"`
	PayslipStatusTone string                 `json:"payslip_status_tone"`
	PayslipURL        *string                `json:"payslip_url,omitempty"`
	Details           []SalaryDetailResponse `json:"details"`
}

type RunError struct {
	EmployeeID string `json:"employee_id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// SalaryPreview is a calculated salary that a dry run did not persist.
type SalaryPreview struct {
	EmployeeID      string                 `json:"employee_id"`
	GrossSalary     string                 `json:"gross_salary"`
	TotalDeductions string                 `json:"total_deductions"`
	TotalTax        string                 `json:"total_tax"`
	NetSalary       string                 `json:"net_salary"`
	Details         []SalaryDetailResponse `json:"details"`
}

// RunResult totals cover processed employees only. Money encodes as a
// decimal string.
type RunResult struct {
	PayPeriodID      string          `json:"pay_period_id"`
	DryRun           bool            `json:"dry_run"`
	ProcessedCount   int             `json:"processed_count"`
	SkippedCount     int             `json:"skipped_count"`
	TotalGrossSalary decimal.Decimal `json:"total_gross_salary"`
	TotalNetSalary   decimal.Decimal `json:"total_net_salary"`
	Errors           []RunError      `json:"errors"`
	Cancelled        bool            `json:"cancelled"`
	Preview          []SalaryPreview `json:"preview,omitempty"`
}

type BulkPaymentFailure struct {
	SalaryID string `json:"salary_id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

type BulkPaymentResult struct {
	Successful []string             `json:"successful"`
	Failed     []BulkPaymentFailure `json:"failed"`
}
