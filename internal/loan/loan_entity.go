package loan

import (
	"time"

	"go-payroll/internal/shared/status"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoanType string

const (
	TypeStandardLoan  LoanType = "STANDARD_LOAN"
	TypeSalaryAdvance LoanType = "SALARY_ADVANCE"
)

type LoanStatus string

const (
	StatusPending   LoanStatus = "PENDING"
	StatusApproved  LoanStatus = "APPROVED"
	StatusRejected  LoanStatus = "REJECTED"
	StatusActive    LoanStatus = "ACTIVE"
	StatusFullyPaid LoanStatus = "FULLY_PAID"
	StatusDefaulted LoanStatus = "DEFAULTED"
	StatusCancelled LoanStatus = "CANCELLED"
)

func (s LoanStatus) Terminal() bool {
	switch s {
	case StatusRejected, StatusFullyPaid, StatusDefaulted, StatusCancelled:
		return true
	}
	return false
}

func (s LoanStatus) Tone() status.Tone {
	switch s {
	case StatusPending:
		return status.ToneWarning
	case StatusApproved:
		return status.ToneInfo
	case StatusActive:
		return status.ToneInfo
	case StatusFullyPaid:
		return status.ToneSuccess
	case StatusRejected, StatusDefaulted:
		return status.ToneDanger
	case StatusCancelled:
		return status.ToneNeutral
	}
	return status.ToneNeutral
}

type RepaymentStatus string

const (
	RepaymentScheduled RepaymentStatus = "SCHEDULED"
	RepaymentPaid      RepaymentStatus = "PAID"
	RepaymentMissed    RepaymentStatus = "MISSED"
)

func (s RepaymentStatus) Tone() status.Tone {
	switch s {
	case RepaymentScheduled:
		return status.ToneNeutral
	case RepaymentPaid:
		return status.ToneSuccess
	case RepaymentMissed:
		return status.ToneDanger
	}
	return status.ToneNeutral
}

type Loan struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID          uuid.UUID `gorm:"type:uuid;index"`
	LoanNumber         string
	EmployeeID         uuid.UUID `gorm:"type:uuid;index"`
	LoanType           LoanType
	Amount             decimal.Decimal `gorm:"type:numeric(18,2)"`
	InterestRate       decimal.Decimal `gorm:"type:numeric(7,4)"`
	TermMonths         int
	TotalRepayable     decimal.Decimal `gorm:"type:numeric(18,2)"`
	OutstandingBalance decimal.Decimal `gorm:"type:numeric(18,2)"`
	MonthlyRepayment   decimal.Decimal `gorm:"type:numeric(18,2)"`
	Status             LoanStatus
	Reason             string
	Notes              *string
	ApplicationDate    time.Time
	ApprovedBy         *uuid.UUID `gorm:"type:uuid"`
	ApprovalDate       *time.Time
	DisbursementDate   *time.Time
	FirstRepaymentDate *time.Time
	ClosedAt           *time.Time
	CreatedBy          uuid.UUID `gorm:"type:uuid"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Generated once at disbursement, ordered by Sequence.
	Repayments []LoanRepayment `gorm:"foreignKey:LoanID"`
}

// NextUnpaid returns the earliest repayment that is not yet PAID, or nil.
func (l *Loan) NextUnpaid() *LoanRepayment {
	for i := range l.Repayments {
		if l.Repayments[i].Status != RepaymentPaid {
			return &l.Repayments[i]
		}
	}
	return nil
}

func (l *Loan) nextUnreserved(reserved map[uuid.UUID]bool) *LoanRepayment {
	for i := range l.Repayments {
		if l.Repayments[i].Status != RepaymentPaid && !reserved[l.Repayments[i].ID] {
			return &l.Repayments[i]
		}
	}
	return nil
}

func (l *Loan) MissedCount() int {
	n := 0
	for _, r := range l.Repayments {
		if r.Status == RepaymentMissed {
			n++
		}
	}
	return n
}

func (l *Loan) repayment(id uuid.UUID) *LoanRepayment {
	for i := range l.Repayments {
		if l.Repayments[i].ID == id {
			return &l.Repayments[i]
		}
	}
	return nil
}

type LoanRepayment struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID        uuid.UUID `gorm:"type:uuid;index"`
	LoanID           uuid.UUID `gorm:"type:uuid;index"`
	Sequence         int
	DueDate          time.Time
	Amount           decimal.Decimal `gorm:"type:numeric(18,2)"`
	PrincipalPortion decimal.Decimal `gorm:"type:numeric(18,2)"`
	InterestPortion  decimal.Decimal `gorm:"type:numeric(18,2)"`
	BalanceAfter     decimal.Decimal `gorm:"type:numeric(18,2)"`
	Status           RepaymentStatus
	PaidDate         *time.Time
	SalaryID         *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Deduction is a repayment a payroll run withholds from an employee's pay.
type Deduction struct {
	LoanID      uuid.UUID
	LoanNumber  string
	LoanType    LoanType
	RepaymentID uuid.UUID
	Sequence    int
	DueDate     time.Time
	Amount      decimal.Decimal
}

// Ref identifies a loan across tenants for background sweeps.
type Ref struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
}
