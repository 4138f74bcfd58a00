package loan_test

import (
	"fmt"
	"testing"
	"time"

	"go-payroll/internal/loan"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAmortize_TwelveMonthLoan(t *testing.T) {
	plan := loan.Amortize(dec("120000"), dec("10"), 12, date("2026-02-28"))

	assert.Equal(t, "132000.00", plan.TotalRepayable.StringFixed(2))
	assert.Equal(t, "11000.00", plan.MonthlyRepayment.StringFixed(2))
	require.Len(t, plan.Rows, 12)

	balance := dec("132000")
	for i, row := range plan.Rows {
		balance = balance.Sub(dec("11000"))
		assert.Equal(t, i+1, row.Sequence)
		assert.Equal(t, "11000.00", row.Amount.StringFixed(2))
		assert.Equal(t, "10000.00", row.PrincipalPortion.StringFixed(2))
		assert.Equal(t, "1000.00", row.InterestPortion.StringFixed(2))
		assert.True(t, row.BalanceAfter.Equal(balance), "row %d balance %s", i+1, row.BalanceAfter)
		assert.Equal(t, loan.RepaymentScheduled, row.Status)
	}
	assert.True(t, plan.Rows[11].BalanceAfter.IsZero())
	assert.Equal(t, date("2026-03-28"), plan.Rows[1].DueDate)
	assert.Equal(t, date("2027-01-28"), plan.Rows[11].DueDate)
}

func TestAmortize_SalaryAdvance(t *testing.T) {
	plan := loan.Amortize(dec("50000"), decimal.Zero, 1, date("2026-01-15"))

	require.Len(t, plan.Rows, 1)
	assert.Equal(t, "50000.00", plan.TotalRepayable.StringFixed(2))
	assert.Equal(t, "50000.00", plan.Rows[0].Amount.StringFixed(2))
	assert.True(t, plan.Rows[0].InterestPortion.IsZero())
	assert.True(t, plan.Rows[0].BalanceAfter.IsZero())
	assert.Equal(t, date("2026-01-15"), plan.Rows[0].DueDate)
}

func TestAmortize_ResidualOnLastRow(t *testing.T) {
	plan := loan.Amortize(dec("1000"), dec("0"), 3, date("2026-01-31"))

	assert.Equal(t, "333.33", plan.Rows[0].Amount.StringFixed(2))
	assert.Equal(t, "333.33", plan.Rows[1].Amount.StringFixed(2))
	assert.Equal(t, "333.34", plan.Rows[2].Amount.StringFixed(2))
	assert.Equal(t, "333.33", plan.MonthlyRepayment.StringFixed(2))
}

func TestAmortize_ScheduleReconciles(t *testing.T) {
	amounts := []string{"0.12", "999.99", "12345.67", "120000", "7000000.01"}
	rates := []string{"0", "0.015", "3.75", "10", "33.333", "100"}
	terms := []int{1, 2, 7, 12, 24, 36, 120}

	for _, a := range amounts {
		for _, r := range rates {
			for _, term := range terms {
				amount, rate := dec(a), dec(r)
				plan := loan.Amortize(amount, rate, term, date("2026-01-31"))
				if plan.MonthlyRepayment.IsZero() && term > 1 {
					continue
				}
				name := fmt.Sprintf("%s@%s/%d", a, r, term)

				sum, principal := decimal.Zero, decimal.Zero
				prev := plan.TotalRepayable
				for _, row := range plan.Rows {
					sum = sum.Add(row.Amount)
					principal = principal.Add(row.PrincipalPortion)
					assert.True(t, row.Amount.Equal(row.PrincipalPortion.Add(row.InterestPortion)), name)
					assert.False(t, row.PrincipalPortion.IsNegative(), name)
					assert.False(t, row.InterestPortion.IsNegative(), "%s: row %d interest %s", name, row.Sequence, row.InterestPortion)
					assert.True(t, row.BalanceAfter.LessThan(prev) || row.Amount.IsZero(), name)
					prev = row.BalanceAfter
				}
				assert.True(t, sum.Equal(plan.TotalRepayable), "%s: sum %s total %s", name, sum, plan.TotalRepayable)
				assert.True(t, principal.Equal(amount), "%s: principal %s", name, principal)
				assert.True(t, plan.Rows[term-1].BalanceAfter.IsZero(), name)
			}
		}
	}
}

func TestAmortize_LowRateLongTerm(t *testing.T) {
	plan := loan.Amortize(dec("1000"), dec("0.015"), 24, date("2026-01-31"))

	assert.Equal(t, "1000.15", plan.TotalRepayable.StringFixed(2))
	interest := decimal.Zero
	for _, row := range plan.Rows {
		assert.False(t, row.InterestPortion.IsNegative(), "row %d interest %s", row.Sequence, row.InterestPortion)
		assert.True(t, row.PrincipalPortion.LessThanOrEqual(row.Amount), "row %d", row.Sequence)
		interest = interest.Add(row.InterestPortion)
	}
	assert.Equal(t, "0.15", interest.StringFixed(2))

	last := plan.Rows[23]
	assert.Equal(t, "41.74", last.Amount.StringFixed(2))
	assert.Equal(t, "41.73", last.PrincipalPortion.StringFixed(2))
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		start string
		n     int
		want  string
	}{
		{"2026-01-31", 1, "2026-02-28"},
		{"2026-01-31", 2, "2026-03-31"},
		{"2028-01-31", 1, "2028-02-29"},
		{"2026-03-15", 10, "2027-01-15"},
		{"2026-12-31", 0, "2026-12-31"},
		{"2026-08-30", 6, "2027-02-28"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s+%d", tt.start, tt.n), func(t *testing.T) {
			assert.Equal(t, date(tt.want), loan.AddMonths(date(tt.start), tt.n))
		})
	}
}
