package payroll

import (
	"time"

	"go-payroll/internal/salarycomponent"
	"go-payroll/internal/shared/status"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayPeriodStatus string

const (
	PeriodOpen       PayPeriodStatus = "OPEN"
	PeriodProcessing PayPeriodStatus = "PROCESSING"
	PeriodClosed     PayPeriodStatus = "CLOSED"
)

func (s PayPeriodStatus) Tone() status.Tone {
	switch s {
	case PeriodOpen:
		return status.ToneInfo
	case PeriodProcessing:
		return status.ToneWarning
	case PeriodClosed:
		return status.ToneNeutral
	}
	return status.ToneNeutral
}

type SalaryStatus string

const (
	SalaryDraft     SalaryStatus = "DRAFT"
	SalaryApproved  SalaryStatus = "APPROVED"
	SalaryPaid      SalaryStatus = "PAID"
	SalaryCancelled SalaryStatus = "CANCELLED"
)

func (s SalaryStatus) Valid() bool {
	switch s {
	case SalaryDraft, SalaryApproved, SalaryPaid, SalaryCancelled:
		return true
	}
	return false
}

// Settled salaries no longer block closing their period.
func (s SalaryStatus) Settled() bool {
	return s == SalaryPaid || s == SalaryCancelled
}

func (s SalaryStatus) Tone() status.Tone {
	switch s {
	case SalaryDraft:
		return status.ToneNeutral
	case SalaryApproved:
		return status.ToneInfo
	case SalaryPaid:
		return status.ToneSuccess
	case SalaryCancelled:
		return status.ToneDanger
	}
	return status.ToneNeutral
}

type PayslipStatus string

const (
	PayslipNotRequested PayslipStatus = "NOT_REQUESTED"
	PayslipRequested    PayslipStatus = "REQUESTED"
	PayslipGenerated    PayslipStatus = "GENERATED"
)

func (s PayslipStatus) Tone() status.Tone {
	switch s {
	case PayslipNotRequested:
		return status.ToneNeutral
	case PayslipRequested:
		return status.ToneWarning
	case PayslipGenerated:
		return status.ToneSuccess
	}
	return status.ToneNeutral
}

// PayPeriod is a company's pay window. A company has at most one OPEN period.
type PayPeriod struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID `gorm:"type:uuid;index;index:uq_pay_period_open,unique,where:status = 'OPEN'"`
	Name        string
	StartDate   time.Time
	EndDate     time.Time
	PaymentDate time.Time
	Status      PayPeriodStatus
	LockedAt    *time.Time
	ClosedAt    *time.Time
	CreatedBy   uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Salary is one employee's pay for one period. There is at most one row per
// (company, employee, period).
type Salary struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID          uuid.UUID       `gorm:"type:uuid;uniqueIndex:uq_salary_employee_period"`
	EmployeeID         uuid.UUID       `gorm:"type:uuid;uniqueIndex:uq_salary_employee_period"`
	PayPeriodID        uuid.UUID       `gorm:"type:uuid;uniqueIndex:uq_salary_employee_period"`
	GrossSalary        decimal.Decimal `gorm:"type:numeric(18,2)"`
	TotalDeductions    decimal.Decimal `gorm:"type:numeric(18,2)"`
	TotalTax           decimal.Decimal `gorm:"type:numeric(18,2)"`
	NetSalary          decimal.Decimal `gorm:"type:numeric(18,2)"`
	Status             SalaryStatus
	CalculatedAt       time.Time
	ApprovedBy         *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt         *time.Time
	PaidAt             *time.Time
	PaymentReference   *string
	Notes              *string
	PayslipStatus      PayslipStatus
	PayslipURL         *string
	PayslipGeneratedAt *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Details []SalaryDetail `gorm:"foreignKey:SalaryID"`
}

// LoanLines returns the details that settle a loan repayment.
func (s Salary) LoanLines() []SalaryDetail {
	var out []SalaryDetail
	for _, d := range s.Details {
		if d.LoanID != nil && d.LoanRepaymentID != nil {
			out = append(out, d)
		}
	}
	return out
}

type SalaryDetail struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID `gorm:"type:uuid"`
	SalaryID        uuid.UUID `gorm:"type:uuid;index"`
	Sequence        int
	ComponentID     *uuid.UUID `gorm:"type:uuid"`
	ComponentCode   string
	ComponentName   string
	ComponentType   salarycomponent.ComponentType
	Amount          decimal.Decimal `gorm:"type:numeric(18,2)"`
	ShowOnPayslip   bool
	LoanID          *uuid.UUID `gorm:"type:uuid"`
	LoanRepaymentID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
}
