package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Plan is a simple-interest repayment schedule. Row amounts sum to
// TotalRepayable and BalanceAfter reaches zero on the last row.
type Plan struct {
	TotalRepayable   decimal.Decimal
	MonthlyRepayment decimal.Decimal
	Rows             []LoanRepayment
}

// TotalRepayable is amount plus amount*rate/100, rounded to the cent.
func TotalRepayable(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Add(amount.Mul(rate).Div(hundred)).Round(2)
}

// Amortize splits a loan into term monthly installments. Every installment
// but the last is total/term rounded down to the cent; the last absorbs the
// remainder. Principal follows the cumulative proportion amount/total: each
// row takes the rounded cumulative target minus what earlier rows took, so
// rounding never accumulates and every portion stays within the row amount.
func Amortize(amount, rate decimal.Decimal, term int, firstDue time.Time) Plan {
	total := TotalRepayable(amount, rate)
	terms := decimal.NewFromInt(int64(term))
	installment := total.Div(terms).RoundFloor(2)

	rows := make([]LoanRepayment, term)
	paid := decimal.Zero
	principalPaid := decimal.Zero
	for i := 0; i < term; i++ {
		row := LoanRepayment{
			ID:       uuid.New(),
			Sequence: i + 1,
			DueDate:  AddMonths(firstDue, i),
			Status:   RepaymentScheduled,
		}
		if i == term-1 {
			row.Amount = total.Sub(paid)
			row.PrincipalPortion = amount.Sub(principalPaid)
		} else {
			row.Amount = installment
			target := paid.Add(installment).Mul(amount).Div(total).Round(2)
			p := target.Sub(principalPaid)
			if p.GreaterThan(installment) {
				p = installment
			}
			row.PrincipalPortion = p
		}
		row.InterestPortion = row.Amount.Sub(row.PrincipalPortion)

		paid = paid.Add(row.Amount)
		principalPaid = principalPaid.Add(row.PrincipalPortion)
		row.BalanceAfter = total.Sub(paid)
		rows[i] = row
	}

	return Plan{TotalRepayable: total, MonthlyRepayment: installment, Rows: rows}
}

// AddMonths steps n calendar months from t, keeping t's day of month where
// it exists and clamping to the month's last day otherwise (Jan 31 + 1 is
// Feb 28 or 29, + 2 is Mar 31).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
