package events

import "time"

// EmployeeLifecycleTopic is owned by the HR service; payroll only consumes it.
const EmployeeLifecycleTopic = "hr.employee.lifecycle.v1"

const (
	EmployeeCreatedEventType    = "employee_created"
	EmployeeTerminatedEventType = "employee_terminated"
)

type EmployeeLifecycleEvent struct {
	EventType  string `json:"event_type"`
	RequestID  string `json:"request_id,omitempty"`
	EmployeeID string `json:"employee_id"`
	CompanyID  string `json:"company_id"`
	// EffectiveDate is the last day of employment for employee_terminated.
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}
