package events

import "time"

const (
	PayslipRequestedTopic = "payroll.salary.payslip.requested.v1"
	PayslipGeneratedTopic = "payroll.salary.payslip.generated.v1"
	SalaryPaidTopic       = "payroll.salary.paid.v1"
)

const (
	PayslipRequestedEventType = "payslip_requested"
	PayslipGeneratedEventType = "payslip_generated"
	SalaryPaidEventType       = "salary_paid"
)

// PayslipRequestedEvent asks the external renderer to build a payslip for an
// approved salary.
type PayslipRequestedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id,omitempty"`
	SalaryID    string    `json:"salary_id"`
	CompanyID   string    `json:"company_id"`
	EmployeeID  string    `json:"employee_id"`
	PayPeriodID string    `json:"pay_period_id"`
	RequestedBy string    `json:"requested_by"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PayslipGeneratedEvent is published by the renderer once the document exists.
type PayslipGeneratedEvent struct {
	EventType  string    `json:"event_type"`
	SalaryID   string    `json:"salary_id"`
	CompanyID  string    `json:"company_id"`
	URL        string    `json:"url"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Money fields are decimal strings.
type SalaryPaidEvent struct {
	EventType        string    `json:"event_type"`
	RequestID        string    `json:"request_id,omitempty"`
	SalaryID         string    `json:"salary_id"`
	CompanyID        string    `json:"company_id"`
	EmployeeID       string    `json:"employee_id"`
	PayPeriodID      string    `json:"pay_period_id"`
	NetSalary        string    `json:"net_salary"`
	PaymentReference string    `json:"payment_reference"`
	OccurredAt       time.Time `json:"occurred_at"`
}
