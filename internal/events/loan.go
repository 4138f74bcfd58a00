package events

import "time"

const (
	LoanDisbursedTopic = "payroll.loan.disbursed.v1"
	LoanClosedTopic    = "payroll.loan.closed.v1"
)

const (
	LoanDisbursedEventType = "loan_disbursed"
	LoanClosedEventType    = "loan_closed"
)

type LoanEvent struct {
	EventType          string    `json:"event_type"`
	RequestID          string    `json:"request_id,omitempty"`
	LoanID             string    `json:"loan_id"`
	LoanNumber         string    `json:"loan_number"`
	CompanyID          string    `json:"company_id"`
	EmployeeID         string    `json:"employee_id"`
	LoanType           string    `json:"loan_type"`
	Status             string    `json:"status"`
	Amount             string    `json:"amount"`
	OutstandingBalance string    `json:"outstanding_balance"`
	OccurredAt         time.Time `json:"occurred_at"`
}
