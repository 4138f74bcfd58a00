package salarycomponent

import (
	"github.com/shopspring/decimal"
)

// Money and percentage fields accept JSON strings or numbers and are
// always returned as strings.
type CreateComponentRequest struct {
	Code            string          `json:"code" binding:"required,max=64"`
	Name            string          `json:"name" binding:"required,max=128"`
	Type            string          `json:"type" binding:"required,oneof=EARNING DEDUCTION TAX"`
	IsBase          bool            `json:"is_base"`
	CalculationType string          `json:"calculation_type" binding:"required,oneof=FIXED PERCENTAGE FORMULA"`
	Value           decimal.Decimal `json:"value"`
	Formula         *string         `json:"formula"`
	PercentageBase  *string         `json:"percentage_base" binding:"omitempty,oneof=BASE GROSS TAXABLE_GROSS"`
	Taxable         bool            `json:"taxable"`
	ShowOnPayslip   *bool           `json:"show_on_payslip"`
	RoleID          *string         `json:"role_id" binding:"omitempty,uuid"`
	Country         *string         `json:"country" binding:"omitempty,len=2"`
	SortOrder       int             `json:"sort_order"`
	ActiveFrom      string          `json:"active_from" binding:"omitempty,datetime=2006-01-02"`
}

// SupersedeComponentRequest describes the next version. Code, type and the
// base flag carry over from the version being replaced.
type SupersedeComponentRequest struct {
	Name            string          `json:"name" binding:"required,max=128"`
	CalculationType string          `json:"calculation_type" binding:"required,oneof=FIXED PERCENTAGE FORMULA"`
	Value           decimal.Decimal `json:"value"`
	Formula         *string         `json:"formula"`
	PercentageBase  *string         `json:"percentage_base" binding:"omitempty,oneof=BASE GROSS TAXABLE_GROSS"`
	Taxable         bool            `json:"taxable"`
	ShowOnPayslip   *bool           `json:"show_on_payslip"`
	RoleID          *string         `json:"role_id" binding:"omitempty,uuid"`
	Country         *string         `json:"country" binding:"omitempty,len=2"`
	SortOrder       int             `json:"sort_order"`
	ActiveFrom      string          `json:"active_from" binding:"required,datetime=2006-01-02"`
}

type ComponentQueryFilter struct {
	Code           string `form:"code"`
	Type           string `form:"type" binding:"omitempty,oneof=EARNING DEDUCTION TAX"`
	AsOf           string `form:"as_of" binding:"omitempty,datetime=2006-01-02"`
	IncludeHistory bool   `form:"include_history"`
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
}

type ComponentResponse struct {
	ID              string  `json:"id"`
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	IsBase          bool    `json:"is_base"`
	CalculationType string  `json:"calculation_type"`
	Value           string  `json:"value"`
	Formula         *string `json:"formula,omitempty"`
	PercentageBase  *string `json:"percentage_base,omitempty"`
	Taxable         bool    `json:"taxable"`
	ShowOnPayslip   bool    `json:"show_on_payslip"`
	RoleID          *string `json:"role_id,omitempty"`
	Country         *string `json:"country,omitempty"`
	SortOrder       int     `json:"sort_order"`
	Version         int     `json:"version"`
	ActiveFrom      string  `json:"active_from"`
	ActiveTo        *string `json:"active_to,omitempty"`
	SupersededByID  *string `json:"superseded_by_id,omitempty"`
}

type AssignComponentRequest struct {
	ComponentID   string          `json:"component_id" binding:"required,uuid"`
	Value         decimal.Decimal `json:"value"`
	EffectiveFrom string          `json:"effective_from" binding:"required,datetime=2006-01-02"`
}

type EndAssignmentRequest struct {
	EffectiveTo string `json:"effective_to" binding:"required,datetime=2006-01-02"`
}

type AssignmentResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	ComponentID   string  `json:"component_id"`
	ComponentCode string  `json:"component_code"`
	Value         string  `json:"value"`
	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`
	IsActive      bool    `json:"is_active"`
}
