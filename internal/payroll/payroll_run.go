package payroll

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go-payroll/internal/employee"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const runLockPrefix = "payroll:run:"

// releaseRunScript deletes the run lock only while it still holds our token,
// so an expired lock taken over by another run is left alone.
var releaseRunScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeFailed
)

type employeeResult struct {
	employeeID string
	outcome    outcome
	calc       Calculation
	err        error
}

func (r *employeeResult) fail(err error) employeeResult {
	r.outcome = outcomeFailed
	r.err = err
	return *r
}

// describe renders err for a per-item failure list. Persistence and unknown
// errors keep their generic message.
func describe(err error) (string, string) {
	h := apperror.ToHTTP(err)
	if detail, ok := h.Details.(string); ok {
		return h.Code, detail
	}
	return h.Code, h.Message
}

func (res *RunResult) add(r employeeResult) {
	switch r.outcome {
	case outcomeSkipped:
		res.SkippedCount++
	case outcomeFailed:
		code, msg := describe(r.err)
		res.Errors = append(res.Errors, RunError{EmployeeID: r.employeeID, Code: code, Message: msg})
	case outcomeProcessed:
		res.ProcessedCount++
		res.TotalGrossSalary = res.TotalGrossSalary.Add(r.calc.GrossSalary)
		res.TotalNetSalary = res.TotalNetSalary.Add(r.calc.NetSalary)
		if res.DryRun {
			res.Preview = append(res.Preview, SalaryPreview{
				EmployeeID:      r.employeeID,
				GrossSalary:     r.calc.GrossSalary.StringFixed(2),
				TotalDeductions: r.calc.TotalDeductions.StringFixed(2),
				TotalTax:        r.calc.TotalTax.StringFixed(2),
				NetSalary:       r.calc.NetSalary.StringFixed(2),
				Details:         mapLinesToResponse(r.calc.Lines),
			})
		}
	}
}

// Process calculates every eligible employee of an open period. Failures are
// collected per employee and never abort the run. A cancelled ctx stops new
// employees from being scheduled; the ones already started finish and the
// partial result is returned with Cancelled set.
func (s *service) Process(ctx context.Context, companyID, actorID, periodID string, req ProcessRequest) (RunResult, error) {
	logger := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("pay_period_id", periodID),
		zap.Bool("dry_run", req.DryRun),
	)
	logger.Debug("payroll run requested", zap.String("actor_id", actorID))

	if _, err := uuid.Parse(periodID); err != nil {
		return RunResult{}, payrollerrors.ErrPeriodNotFound
	}
	period, err := s.repo.FindPeriodByID(ctx, companyID, periodID)
	if err != nil {
		return RunResult{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	if period.Status != PeriodOpen {
		logger.Warn("payroll run rejected", zap.String("status", string(period.Status)))
		return RunResult{}, payrollerrors.ErrPeriodNotOpen
	}

	if !req.DryRun {
		release, err := s.acquireRun(ctx, periodID, actorID)
		if err != nil {
			logger.Warn("payroll run lock not acquired", zap.Error(err))
			return RunResult{}, err
		}
		defer release()
	}

	employees, err := s.employees.ListEligible(ctx, companyID, period.EndDate)
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{
		PayPeriodID:      periodID,
		DryRun:           req.DryRun,
		TotalGrossSalary: decimal.Zero,
		TotalNetSalary:   decimal.Zero,
		Errors:           []RunError{},
	}
	started := time.Now()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.cfg.Workers)
	work := context.WithoutCancel(ctx)

	for _, empl := range employees {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}
		g.Go(func() error {
			r := s.processEmployee(work, period, empl, req.DryRun)
			mu.Lock()
			result.add(r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].EmployeeID < result.Errors[j].EmployeeID
	})
	sort.Slice(result.Preview, func(i, j int) bool {
		return result.Preview[i].EmployeeID < result.Preview[j].EmployeeID
	})

	logger.Info("payroll run finished",
		zap.Int("eligible", len(employees)),
		zap.Int("processed", result.ProcessedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", len(result.Errors)),
		zap.String("total_net_salary", result.TotalNetSalary.StringFixed(2)),
		zap.Bool("cancelled", result.Cancelled),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// acquireRun makes commit runs for one period mutually exclusive: always
// within the process, and across processes when Redis is configured.
func (s *service) acquireRun(ctx context.Context, periodID, actorID string) (func(), error) {
	unlock, ok := s.runLocks.TryLock(periodID)
	if !ok {
		return nil, payrollerrors.ErrRunInProgress
	}
	if s.rdb == nil {
		return unlock, nil
	}

	key := runLockPrefix + periodID
	token := actorID + ":" + uuid.NewString()
	acquired, err := s.rdb.SetNX(ctx, key, token, s.cfg.RunLockTTL).Result()
	if err != nil {
		unlock()
		return nil, apperror.Persistence(err)
	}
	if !acquired {
		unlock()
		return nil, payrollerrors.ErrRunInProgress
	}

	return func() {
		if err := releaseRunScript.Run(context.WithoutCancel(ctx), s.rdb, []string{key}, token).Err(); err != nil {
			s.logger.Warn("payroll run lock release failed", zap.String("key", key), zap.Error(err))
		}
		unlock()
	}, nil
}

func (s *service) processEmployee(ctx context.Context, period *PayPeriod, empl employee.Employee, dryRun bool) employeeResult {
	logger := contextutil.GetLogger(ctx, s.logger)
	res := employeeResult{employeeID: empl.ID.String()}
	companyID := period.CompanyID.String()

	existing, err := s.repo.FindSalaryByEmployee(ctx, companyID, period.ID.String(), res.employeeID, false)
	switch {
	case err == nil && existing.Status != SalaryDraft:
		res.outcome = outcomeSkipped
		return res
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return res.fail(mapRepositoryError(err, payrollerrors.ErrSalaryNotFound))
	}

	components, err := s.resolver.Resolve(ctx, empl, period.EndDate)
	if err != nil {
		return res.fail(err)
	}
	// Salaries of earlier periods may still be unpaid; their installments
	// must not be deducted a second time.
	reserved, err := s.repo.ReservedRepayments(ctx, companyID, res.employeeID, period.ID.String())
	if err != nil {
		return res.fail(mapRepositoryError(err, payrollerrors.ErrSalaryNotFound))
	}
	deductions, err := s.loans.DueDeductions(ctx, companyID, res.employeeID, period.EndDate, reserved)
	if err != nil {
		return res.fail(err)
	}
	calc, err := Calculate(CalculationInput{
		Employee:       empl,
		Components:     components,
		AsOf:           period.EndDate,
		LoanDeductions: deductions,
	})
	if err != nil {
		logger.Warn("salary calculation failed", zap.String("employee_id", res.employeeID), zap.Error(err))
		return res.fail(err)
	}
	res.calc = calc

	if !dryRun {
		skipped, err := s.upsert(ctx, period, empl, calc)
		if err != nil {
			logger.Error("salary upsert failed", zap.String("employee_id", res.employeeID), zap.Error(err))
			return res.fail(err)
		}
		if skipped {
			res.outcome = outcomeSkipped
			return res
		}
	}
	res.outcome = outcomeProcessed
	return res
}

// upsert writes one employee's salary in its own transaction. A DRAFT row is
// recalculated in place; any other status is left untouched and reported as
// skipped.
func (s *service) upsert(ctx context.Context, period *PayPeriod, empl employee.Employee, calc Calculation) (bool, error) {
	companyID := period.CompanyID.String()
	periodID := period.ID.String()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, apperror.Persistence(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	p, err := qtx.FindPeriodForShare(ctx, companyID, periodID)
	if err != nil {
		return false, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	if p.Status != PeriodOpen {
		return false, payrollerrors.ErrPeriodNotOpen
	}

	salary, err := qtx.FindSalaryByEmployee(ctx, companyID, periodID, empl.ID.String(), true)
	created := false
	switch {
	case err == nil:
		if salary.Status != SalaryDraft {
			return true, nil
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		created = true
		salary = &Salary{
			ID:            uuid.New(),
			CompanyID:     period.CompanyID,
			EmployeeID:    empl.ID,
			PayPeriodID:   period.ID,
			Status:        SalaryDraft,
			PayslipStatus: PayslipNotRequested,
		}
	default:
		return false, mapRepositoryError(err, payrollerrors.ErrSalaryNotFound)
	}

	salary.GrossSalary = calc.GrossSalary
	salary.TotalDeductions = calc.TotalDeductions
	salary.TotalTax = calc.TotalTax
	salary.NetSalary = calc.NetSalary
	salary.CalculatedAt = time.Now().UTC()

	if created {
		err = qtx.CreateSalary(ctx, salary)
	} else {
		err = qtx.UpdateSalary(ctx, salary)
	}
	if err != nil {
		return false, mapRepositoryError(err, payrollerrors.ErrSalaryNotFound)
	}
	if err := qtx.ReplaceDetails(ctx, salary.ID.String(), detailsFor(salary, calc.Lines)); err != nil {
		return false, mapRepositoryError(err, payrollerrors.ErrSalaryNotFound)
	}

	if err := tx.Commit(); err != nil {
		return false, apperror.Persistence(err)
	}
	return false, nil
}

func detailsFor(salary *Salary, lines []Line) []SalaryDetail {
	out := make([]SalaryDetail, len(lines))
	for i, l := range lines {
		out[i] = SalaryDetail{
			ID:              uuid.New(),
			CompanyID:       salary.CompanyID,
			SalaryID:        salary.ID,
			Sequence:        i + 1,
			ComponentID:     l.ComponentID,
			ComponentCode:   l.ComponentCode,
			ComponentName:   l.ComponentName,
			ComponentType:   l.ComponentType,
			Amount:          l.Amount,
			ShowOnPayslip:   l.ShowOnPayslip,
			LoanID:          l.LoanID,
			LoanRepaymentID: l.LoanRepaymentID,
		}
	}
	return out
}
