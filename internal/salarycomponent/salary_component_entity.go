package salarycomponent

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ComponentType string

const (
	TypeEarning   ComponentType = "EARNING"
	TypeDeduction ComponentType = "DEDUCTION"
	TypeTax       ComponentType = "TAX"
)

func (t ComponentType) Valid() bool {
	switch t {
	case TypeEarning, TypeDeduction, TypeTax:
		return true
	}
	return false
}

type CalculationType string

const (
	CalculationFixed      CalculationType = "FIXED"
	CalculationPercentage CalculationType = "PERCENTAGE"
	CalculationFormula    CalculationType = "FORMULA"
)

func (t CalculationType) Valid() bool {
	switch t {
	case CalculationFixed, CalculationPercentage, CalculationFormula:
		return true
	}
	return false
}

// PercentageBase selects what a PERCENTAGE component is a percentage of.
// When unset, taxes use gross and everything else uses base salary.
type PercentageBase string

const (
	PercentOfBase         PercentageBase = "BASE"
	PercentOfGross        PercentageBase = "GROSS"
	PercentOfTaxableGross PercentageBase = "TAXABLE_GROSS"
)

func (b PercentageBase) Valid() bool {
	switch b {
	case PercentOfBase, PercentOfGross, PercentOfTaxableGross:
		return true
	}
	return false
}

// SalaryComponent is one immutable version of a component definition.
// Versions of the same Code never overlap: superseding closes the old
// version at the new version's ActiveFrom.
type SalaryComponent struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index"`
	Code            string
	Name            string
	Type            ComponentType
	IsBase          bool
	CalculationType CalculationType
	Value           decimal.Decimal `gorm:"type:numeric(18,4)"`
	Formula         *string
	PercentageBase  *PercentageBase
	Taxable         bool
	ShowOnPayslip   bool
	RoleID          *uuid.UUID `gorm:"type:uuid"`
	Country         *string
	SortOrder       int
	Version         int
	ActiveFrom      time.Time
	ActiveTo        *time.Time
	SupersededByID  *uuid.UUID `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (c SalaryComponent) ActiveOn(day time.Time) bool {
	if day.Before(c.ActiveFrom) {
		return false
	}
	return c.ActiveTo == nil || day.Before(*c.ActiveTo)
}

// AppliesTo reports whether the component's role/country scope selects an
// employee. Unscoped components only reach employees through assignments.
func (c SalaryComponent) AppliesTo(roleID *uuid.UUID, country string) bool {
	if c.RoleID == nil && c.Country == nil {
		return false
	}
	if c.RoleID != nil && (roleID == nil || *c.RoleID != *roleID) {
		return false
	}
	if c.Country != nil && *c.Country != country {
		return false
	}
	return true
}

// EmployeeSalaryComponent assigns a component to one employee. Rows are
// append-only: ending an assignment sets EffectiveTo once and clears IsActive.
type EmployeeSalaryComponent struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID `gorm:"type:uuid;index"`
	EmployeeID    uuid.UUID `gorm:"type:uuid;index"`
	ComponentID   uuid.UUID `gorm:"type:uuid"`
	ComponentCode string
	Value         decimal.Decimal `gorm:"type:numeric(18,4)"`
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (a EmployeeSalaryComponent) EffectiveOn(day time.Time) bool {
	if day.Before(a.EffectiveFrom) {
		return false
	}
	return a.EffectiveTo == nil || day.Before(*a.EffectiveTo)
}

type Source string

const (
	SourceScope    Source = "SCOPE"
	SourceEmployee Source = "EMPLOYEE"
)

// ResolvedComponent is a component definition with the value that applies
// to one employee on one date.
type ResolvedComponent struct {
	Component    SalaryComponent
	Value        decimal.Decimal
	Source       Source
	AssignmentID *uuid.UUID
}

func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
