package employee

import (
	"time"

	"go-payroll/internal/shared/status"

	"github.com/google/uuid"
)

type EmployeeStatus string

const (
	StatusActive     EmployeeStatus = "ACTIVE"
	StatusOnLeave    EmployeeStatus = "ON_LEAVE"
	StatusSuspended  EmployeeStatus = "SUSPENDED"
	StatusTerminated EmployeeStatus = "TERMINATED"
)

func (s EmployeeStatus) Valid() bool {
	switch s {
	case StatusActive, StatusOnLeave, StatusSuspended, StatusTerminated:
		return true
	}
	return false
}

func (s EmployeeStatus) Tone() status.Tone {
	switch s {
	case StatusActive:
		return status.ToneSuccess
	case StatusOnLeave:
		return status.ToneInfo
	case StatusSuspended:
		return status.ToneWarning
	case StatusTerminated:
		return status.ToneDanger
	}
	return status.ToneNeutral
}

// Employee is owned by the HR system; payroll only reads it.
type Employee struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID  `gorm:"type:uuid;index"`
	RoleID          *uuid.UUID `gorm:"type:uuid"`
	FullName        string
	Country         string
	Status          EmployeeStatus
	HireDate        time.Time
	TerminationDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EligibleOn reports whether the employee must be paid for a period ending at periodEnd.
func (e Employee) EligibleOn(periodEnd time.Time) bool {
	if e.Status != StatusActive {
		return false
	}
	if e.HireDate.After(periodEnd) {
		return false
	}
	if e.TerminationDate != nil && !e.TerminationDate.After(periodEnd) {
		return false
	}
	return true
}

type Role struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;index"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`
	Name         string
}
