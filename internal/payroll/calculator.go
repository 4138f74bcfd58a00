package payroll

import (
	"fmt"
	"time"

	"go-payroll/internal/employee"
	"go-payroll/internal/formula"
	"go-payroll/internal/loan"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/salarycomponent"
	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	varBaseSalary   = "baseSalary"
	varGrossSalary  = "grossSalary"
	varTaxableGross = "taxableGross"

	loanRepaymentCode   = "LOAN_REPAYMENT"
	advanceRecoveryCode = "ADVANCE_RECOVERY"
)

var hundred = decimal.NewFromInt(100)

// CalculationInput carries everything one salary depends on. AsOf is the
// period end date; loan deductions due after it are ignored.
type CalculationInput struct {
	Employee       employee.Employee
	Components     []salarycomponent.ResolvedComponent
	AsOf           time.Time
	LoanDeductions []loan.Deduction
}

// Line is one calculated amount, in evaluation order.
type Line struct {
	ComponentID     *uuid.UUID
	ComponentCode   string
	ComponentName   string
	ComponentType   salarycomponent.ComponentType
	Amount          decimal.Decimal
	ShowOnPayslip   bool
	LoanID          *uuid.UUID
	LoanRepaymentID *uuid.UUID
}

// Calculation totals are sums of the rounded line amounts, so
// NetSalary == GrossSalary - TotalDeductions - TotalTax holds exactly.
type Calculation struct {
	BaseSalary      decimal.Decimal
	GrossSalary     decimal.Decimal
	TaxableGross    decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalTax        decimal.Decimal
	NetSalary       decimal.Decimal
	Lines           []Line
}

// Calculate computes one employee's salary. It has no side effects: the
// base comes first, then other earnings, taxes, deductions and finally loan
// repayment lines. Each amount is rounded half-up to the cent once.
func Calculate(in CalculationInput) (Calculation, error) {
	rcs := make([]salarycomponent.ResolvedComponent, len(in.Components))
	copy(rcs, in.Components)
	salarycomponent.SortForCalculation(rcs)

	bases := 0
	for _, rc := range rcs {
		if rc.Component.IsBase {
			bases++
		}
	}
	switch {
	case bases == 0:
		return Calculation{}, salarycomponenterrors.ErrMissingBase
	case bases > 1:
		return Calculation{}, salarycomponenterrors.ErrMultipleBase
	case rcs[0].Component.CalculationType != salarycomponent.CalculationFixed:
		return Calculation{}, fmt.Errorf("%w: %s is %s", payrollerrors.ErrBaseNotFixed, rcs[0].Component.Code, rcs[0].Component.CalculationType)
	}

	c := Calculation{
		GrossSalary:     decimal.Zero,
		TaxableGross:    decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalTax:        decimal.Zero,
	}
	vars := make(map[string]decimal.Decimal, len(rcs)+3)

	for _, rc := range rcs {
		comp := rc.Component
		vars[varBaseSalary] = c.BaseSalary
		vars[varGrossSalary] = c.GrossSalary
		vars[varTaxableGross] = c.TaxableGross

		amount, err := evaluate(rc, c, vars)
		if err != nil {
			return Calculation{}, fmt.Errorf("%s: %w", comp.Code, err)
		}
		amount = amount.Round(2)
		if amount.IsNegative() {
			return Calculation{}, fmt.Errorf("%w: %s is %s", payrollerrors.ErrNegativeComponent, comp.Code, amount)
		}

		switch comp.Type {
		case salarycomponent.TypeEarning:
			if comp.IsBase {
				c.BaseSalary = amount
			}
			c.GrossSalary = c.GrossSalary.Add(amount)
			if comp.Taxable {
				c.TaxableGross = c.TaxableGross.Add(amount)
			}
		case salarycomponent.TypeTax:
			c.TotalTax = c.TotalTax.Add(amount)
		default:
			c.TotalDeductions = c.TotalDeductions.Add(amount)
		}
		vars[comp.Code] = amount

		id := comp.ID
		c.Lines = append(c.Lines, Line{
			ComponentID:   &id,
			ComponentCode: comp.Code,
			ComponentName: comp.Name,
			ComponentType: comp.Type,
			Amount:        amount,
			ShowOnPayslip: comp.ShowOnPayslip,
		})
	}

	for _, d := range in.LoanDeductions {
		if !in.AsOf.IsZero() && d.DueDate.After(in.AsOf) {
			continue
		}
		amount := d.Amount.Round(2)
		c.TotalDeductions = c.TotalDeductions.Add(amount)
		c.Lines = append(c.Lines, loanLine(d, amount))
	}

	c.NetSalary = c.GrossSalary.Sub(c.TotalDeductions).Sub(c.TotalTax)
	if c.NetSalary.IsNegative() {
		return Calculation{}, fmt.Errorf("%w: net %s", payrollerrors.ErrNegativeNet, c.NetSalary)
	}
	return c, nil
}

func evaluate(rc salarycomponent.ResolvedComponent, c Calculation, vars map[string]decimal.Decimal) (decimal.Decimal, error) {
	comp := rc.Component
	switch comp.CalculationType {
	case salarycomponent.CalculationFixed:
		return rc.Value, nil
	case salarycomponent.CalculationPercentage:
		return percentageBase(comp, c).Mul(rc.Value).Div(hundred), nil
	case salarycomponent.CalculationFormula:
		src := ""
		if comp.Formula != nil {
			src = *comp.Formula
		}
		expr, err := formula.Parse(src)
		if err != nil {
			return decimal.Zero, err
		}
		return expr.Eval(vars)
	}
	return decimal.Zero, fmt.Errorf("%w: calculation type %q", payrollerrors.ErrUnsupportedCalculation, comp.CalculationType)
}

// percentageBase picks what a PERCENTAGE component applies to: gross for
// taxes and base salary otherwise, unless the component says.
func percentageBase(comp salarycomponent.SalaryComponent, c Calculation) decimal.Decimal {
	base := salarycomponent.PercentOfBase
	if comp.Type == salarycomponent.TypeTax {
		base = salarycomponent.PercentOfGross
	}
	if comp.PercentageBase != nil {
		base = *comp.PercentageBase
	}

	switch base {
	case salarycomponent.PercentOfGross:
		return c.GrossSalary
	case salarycomponent.PercentOfTaxableGross:
		return c.TaxableGross
	}
	return c.BaseSalary
}

func loanLine(d loan.Deduction, amount decimal.Decimal) Line {
	code, name := loanRepaymentCode, "Loan repayment"
	if d.LoanType == loan.TypeSalaryAdvance {
		code, name = advanceRecoveryCode, "Salary advance recovery"
	}
	loanID, repaymentID := d.LoanID, d.RepaymentID
	return Line{
		ComponentCode:   code,
		ComponentName:   fmt.Sprintf("%s %s (%d)", name, d.LoanNumber, d.Sequence),
		ComponentType:   salarycomponent.TypeDeduction,
		Amount:          amount,
		ShowOnPayslip:   true,
		LoanID:          &loanID,
		LoanRepaymentID: &repaymentID,
	}
}
