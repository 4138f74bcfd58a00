package loan

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"go-payroll/internal/employee"
	"go-payroll/internal/events"
	loanerrors "go-payroll/internal/loan/errors"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/config"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/counter"
	"go-payroll/internal/shared/keylock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	dateLayout       = "2006-01-02"
	loanNumberPrefix = "LN"
	sweepBatchSize   = 500
	aggregateLoan    = "loan"
)

//go:generate mockgen -source=loan_service.go -destination=mock/loan_service_mock.go -package=mock
type Service interface {
	Apply(ctx context.Context, companyID, actorID string, req ApplyLoanRequest) (LoanResponse, error)
	ApplyAdvance(ctx context.Context, companyID, actorID string, req ApplyAdvanceRequest) (LoanResponse, error)
	Approve(ctx context.Context, companyID, approverID, id string, req ApproveLoanRequest) (LoanResponse, error)
	Reject(ctx context.Context, companyID, id string, req RejectLoanRequest) (LoanResponse, error)
	Disburse(ctx context.Context, companyID, id string, req DisburseLoanRequest) (LoanResponse, error)
	Cancel(ctx context.Context, companyID, id string, req CancelLoanRequest) (LoanResponse, error)

	PostRepayment(ctx context.Context, companyID, id string, req PostRepaymentRequest) (LoanResponse, error)
	// PostRepaymentTx posts inside the caller's transaction; the loan row
	// lock is held until the caller commits.
	PostRepaymentTx(ctx context.Context, tx *sql.Tx, companyID, loanID, repaymentID string, paidDate time.Time, salaryID *uuid.UUID) error
	MarkMissed(ctx context.Context, companyID, id string, req MarkMissedRequest) (LoanResponse, error)
	SweepDelinquency(ctx context.Context, asOf time.Time) (SweepResult, error)

	// DueDeductions skips the reserved repayments, which are already carried
	// by an unsettled salary of another period.
	DueDeductions(ctx context.Context, companyID, employeeID string, periodEnd time.Time, reserved []uuid.UUID) ([]Deduction, error)
	GetLoan(ctx context.Context, companyID, id string) (LoanResponse, error)
	ListLoans(ctx context.Context, companyID string, filter LoanQueryFilter) ([]LoanResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	counter   counter.Repository
	outbox    kafka.OutboxRepository
	employees employee.Service
	cfg       config.LoanConfig
	locks     *keylock.Locker
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	employees employee.Service,
	cfg config.LoanConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("loan.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("loan.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		counter:   counterRepo,
		outbox:    outboxRepo,
		employees: employees,
		cfg:       cfg,
		locks:     keylock.New(),
		logger:    l,
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, loanerrors.ErrInvalidDate
	}
	return t, nil
}

func validateTerms(amount, rate decimal.Decimal, term int) error {
	if !amount.IsPositive() {
		return loanerrors.ErrInvalidAmount
	}
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return loanerrors.ErrInvalidInterestRate
	}
	if term < 1 {
		return loanerrors.ErrInvalidTerm
	}
	installment := TotalRepayable(amount, rate).Div(decimal.NewFromInt(int64(term))).RoundFloor(2)
	if !installment.IsPositive() {
		return loanerrors.ErrInvalidTerm
	}
	return nil
}

func (s *service) Apply(ctx context.Context, companyID, actorID string, req ApplyLoanRequest) (LoanResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("loan application requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", req.EmployeeID),
	)

	if err := validateTerms(req.Amount, req.InterestRate, req.TermMonths); err != nil {
		logger.Warn("loan application validation failed", zap.Error(err))
		return LoanResponse{}, err
	}
	return s.apply(ctx, companyID, actorID, req.EmployeeID, TypeStandardLoan, req.Amount, req.InterestRate, req.TermMonths, req.Reason, req.Notes)
}

func (s *service) ApplyAdvance(ctx context.Context, companyID, actorID string, req ApplyAdvanceRequest) (LoanResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("salary advance requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", req.EmployeeID),
	)

	if !req.Amount.IsPositive() {
		return LoanResponse{}, loanerrors.ErrInvalidAmount
	}
	if req.Amount.GreaterThan(s.cfg.AdvanceCap) {
		logger.Warn("salary advance above cap",
			zap.String("amount", req.Amount.String()),
			zap.String("cap", s.cfg.AdvanceCap.String()),
		)
		return LoanResponse{}, loanerrors.ErrAdvanceCapExceeded
	}
	return s.apply(ctx, companyID, actorID, req.EmployeeID, TypeSalaryAdvance, req.Amount, decimal.Zero, 1, req.Reason, req.Notes)
}

func (s *service) apply(
	ctx context.Context,
	companyID, actorID, employeeID string,
	loanType LoanType,
	amount, rate decimal.Decimal,
	term int,
	reason string,
	notes *string,
) (LoanResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	if strings.TrimSpace(reason) == "" {
		return LoanResponse{}, loanerrors.ErrReasonRequired
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return LoanResponse{}, loanerrors.ErrInvalidActor
	}
	empl, err := s.employees.GetActive(ctx, companyID, employeeID)
	if err != nil {
		return LoanResponse{}, err
	}

	seq, err := s.counter.GetNextValue(ctx, companyID, counter.TypeLoanNumber)
	if err != nil {
		logger.Error("loan number allocation failed", zap.Error(err))
		return LoanResponse{}, mapRepositoryError(err)
	}

	total := TotalRepayable(amount, rate)
	loan := &Loan{
		ID:                 uuid.New(),
		CompanyID:          empl.CompanyID,
		LoanNumber:         counter.Format(loanNumberPrefix, seq),
		EmployeeID:         empl.ID,
		LoanType:           loanType,
		Amount:             amount.Round(2),
		InterestRate:       rate,
		TermMonths:         term,
		TotalRepayable:     total,
		OutstandingBalance: decimal.Zero,
		MonthlyRepayment:   total.Div(decimal.NewFromInt(int64(term))).RoundFloor(2),
		Status:             StatusPending,
		Reason:             reason,
		Notes:              notes,
		ApplicationDate:    Day(time.Now()),
		CreatedBy:          actor,
	}
	if err := s.repo.Create(ctx, loan); err != nil {
		logger.Error("loan application persist failed", zap.Error(err))
		return LoanResponse{}, mapRepositoryError(err)
	}

	logger.Info("loan application created",
		zap.String("loan_id", loan.ID.String()),
		zap.String("loan_number", loan.LoanNumber),
		zap.String("loan_type", string(loanType)),
	)
	return mapLoanToResponse(*loan), nil
}

type mutation func(ctx context.Context, tx *sql.Tx, qtx Repository, l *Loan) error

// mutate runs fn on a locked loan and saves it. The in-process key lock
// keeps concurrent requests from queueing on the database row lock.
func (s *service) mutate(ctx context.Context, companyID, id, op string, fn mutation) (*Loan, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return nil, loanerrors.ErrLoanNotFound
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error(op+" begin tx failed", zap.String("loan_id", id), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	l, err := qtx.FindByID(ctx, companyID, id, true)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if err := fn(ctx, tx, qtx, l); err != nil {
		if apperror.Retryable(err) {
			logger.Error(op+" failed", zap.String("loan_id", id), zap.Error(err))
		} else {
			logger.Warn(op+" rejected",
				zap.String("loan_id", id),
				zap.String("status", string(l.Status)),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if err := qtx.Update(ctx, l); err != nil {
		logger.Error(op+" persist failed", zap.String("loan_id", id), zap.Error(err))
		return nil, mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		logger.Error(op+" commit failed", zap.String("loan_id", id), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	logger.Info(op+" completed",
		zap.String("loan_id", id),
		zap.String("loan_number", l.LoanNumber),
		zap.String("status", string(l.Status)),
	)
	return l, nil
}

func (s *service) Approve(ctx context.Context, companyID, approverID, id string, req ApproveLoanRequest) (LoanResponse, error) {
	approver, err := uuid.Parse(approverID)
	if err != nil {
		return LoanResponse{}, loanerrors.ErrInvalidActor
	}

	l, err := s.mutate(ctx, companyID, id, "loan approve", func(ctx context.Context, tx *sql.Tx, qtx Repository, l *Loan) error {
		if l.Status != StatusPending {
			return loanerrors.ErrLoanNotPending
		}
		today := Day(time.Now())
		l.Status = StatusApproved
		l.ApprovedBy = &approver
		l.ApprovalDate = &today
		if req.Notes != nil {
			l.Notes = req.Notes
		}
		return nil
	})
	if err != nil {
		return LoanResponse{}, err
	}
	return mapLoanToResponse(*l), nil
}

func (s *service) Reject(ctx context.Context, companyID, id string, req RejectLoanRequest) (LoanResponse, error) {
	l, err := s.mutate(ctx, companyID, id, "loan reject", func(ctx context.Context, tx *sql.Tx, qtx Repository, l *Loan) error {
		if l.Status != StatusPending {
			return loanerrors.ErrLoanNotPending
		}
		now := time.Now().UTC()
		l.Status = StatusRejected
		l.ClosedAt = &now
		if req.Notes != nil && strings.TrimSpace(*req.Notes) != "" {
			notes := strings.TrimSpace(*req.Notes)
			l.Notes = &notes
		}
		return nil
	})
	if err != nil {
		return LoanResponse{}, err
	}
	return mapLoanToResponse(*l), nil
}

func (s *service) Cancel(ctx context.Context, companyID, id string, req CancelLoanRequest) (LoanResponse, error) {
	l, err := s.mutate(ctx, companyID, id, "loan cancel", func(ctx context.Context, tx *sql.Tx, qtx Repository, l *Loan) error {
		if l.Status != StatusPending && l.Status != StatusApproved {
			return loanerrors.ErrLoanNotCancellable
		}
		now := time.Now().UTC()
		l.Status = StatusCancelled
		l.ClosedAt = &now
		if req.Notes != nil {
			l.Notes = req.Notes
		}
		return nil
	})
	if err != nil {
		return LoanResponse{}, err
	}
	return mapLoanToResponse(*l), nil
}

// Disburse activates an approved loan and generates its repayment schedule.
// The schedule is never regenerated afterwards.
func (s *service) Disburse(ctx context.Context, companyID, id string, req DisburseLoanRequest) (LoanResponse, error) {
	disbursed, err := parseDate(req.DisbursementDate)
	if err != nil {
		return LoanResponse{}, err
	}
	var requestedFirst *time.Time
	if req.FirstRepaymentDate != nil && *req.FirstRepaymentDate != "" {
		first, err := parseDate(*req.FirstRepaymentDate)
		if err != nil {
			return LoanResponse{}, err
		}
		if first.Before(disbursed) {
			return LoanResponse{}, loanerrors.ErrFirstRepaymentBeforeDisbursement
		}
		requestedFirst = &first
	}

	l, err := s.mutate(ctx, companyID, id, "loan disburse", func(ctx context.Context, tx *sql.Tx, qtx Repository, l *Loan) error {
		if l.Status != StatusApproved {
			return loanerrors.ErrLoanNotApproved
		}

		first := AddMonths(disbursed, 1)
		if l.LoanType == TypeSalaryAdvance {
			first = disbursed
		}
		if requestedFirst != nil {
			first = *requestedFirst
		}

		plan := Amortize(l.Amount, l.InterestRate, l.TermMonths, first)
		for i := range plan.Rows {
			plan.Rows[i].CompanyID = l.CompanyID
			plan.Rows[i].LoanID = l.ID
		}
		if err := qtx.CreateRepayments(ctx, plan.Rows); err != nil {
			return mapRepositoryError(err)
		}

		l.Status = StatusActive
		l.TotalRepayable = plan.TotalRepayable
		l.MonthlyRepayment = plan.MonthlyRepayment
		l.OutstandingBalance = plan.TotalRepayable
		l.DisbursementDate = &disbursed
		l.FirstRepaymentDate = &first
		l.Repayments = plan.Rows

		return s.enqueue(ctx, tx, l, events.LoanDisbursedEventType, events.LoanDisbursedTopic)
	})
	if err != nil {
		return LoanResponse{}, err
	}
	return mapLoanToResponse(*l), nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, l *Loan, eventType, topic string) error {
	payload := events.LoanEvent{
		EventType:          eventType,
		RequestID:          contextutil.GetRequestID(ctx),
		LoanID:             l.ID.String(),
		LoanNumber:         l.LoanNumber,
		CompanyID:          l.CompanyID.String(),
		EmployeeID:         l.EmployeeID.String(),
		LoanType:           string(l.LoanType),
		Status:             string(l.Status),
		Amount:             l.Amount.StringFixed(2),
		OutstandingBalance: l.OutstandingBalance.StringFixed(2),
		OccurredAt:         time.Now().UTC(),
	}
	event, err := kafka.NewOutboxEvent(ctx, aggregateLoan, l.ID.String(), eventType, topic, payload)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "Failed to encode loan event", http.StatusInternalServerError)
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

// post marks one repayment paid. Only the earliest unpaid row may be posted.
// A defaulted loan still accepts repayments so salaries calculated before
// the default stay payable.
func (s *service) post(ctx context.Context, tx *sql.Tx, qtx Repository, l *Loan, repaymentID uuid.UUID, paidDate time.Time, salaryID *uuid.UUID) error {
	if l.Status != StatusActive && l.Status != StatusDefaulted {
		return loanerrors.ErrLoanNotActive
	}
	row := l.repayment(repaymentID)
	if row == nil {
		return loanerrors.ErrRepaymentNotFound
	}
	if row.Status == RepaymentPaid {
		return loanerrors.ErrRepaymentAlreadyPaid
	}
	if next := l.NextUnpaid(); next == nil || next.ID != row.ID {
		return loanerrors.ErrOutOfSequence
	}

	paid := Day(paidDate)
	row.Status = RepaymentPaid
	row.PaidDate = &paid
	row.SalaryID = salaryID
	if err := qtx.UpdateRepayment(ctx, row); err != nil {
		return mapRepositoryError(err)
	}

	l.OutstandingBalance = l.OutstandingBalance.Sub(row.Amount)
	if l.OutstandingBalance.Sign() > 0 {
		return nil
	}

	now := time.Now().UTC()
	l.OutstandingBalance = decimal.Zero
	l.Status = StatusFullyPaid
	l.ClosedAt = &now
	return s.enqueue(ctx, tx, l, events.LoanClosedEventType, events.LoanClosedTopic)
}

func (s *service) PostRepayment(ctx context.Context, companyID, id string, req PostRepaymentRequest) (LoanResponse, error) {
	repaymentID, err := uuid.Parse(req.RepaymentID)
	if err != nil {
		return LoanResponse{}, loanerrors.ErrRepaymentNotFound
	}
	paidDate, err := parseDate(req.PaidDate)
	if err != nil {
		return LoanResponse{}, err
	}

	l, err := s.mutate(ctx, companyID, id, "loan repayment", func(ctx context.Context, tx *sql.Tx, qtx Repository, l *Loan) error {
		return s.post(ctx, tx, qtx, l, repaymentID, paidDate, nil)
	})
	if err != nil {
		return LoanResponse{}, err
	}
	return mapLoanToResponse(*l), nil
}

func (s *service) PostRepaymentTx(ctx context.Context, tx *sql.Tx, companyID, loanID, repaymentID string, paidDate time.Time, salaryID *uuid.UUID) error {
	logger := contextutil.GetLogger(ctx, s.logger)

	rid, err := uuid.Parse(repaymentID)
	if err != nil {
		return loanerrors.ErrRepaymentNotFound
	}

	qtx := s.repo.WithTx(tx)
	l, err := qtx.FindByID(ctx, companyID, loanID, true)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.post(ctx, tx, qtx, l, rid, paidDate, salaryID); err != nil {
		logger.Warn("payroll loan repayment rejected",
			zap.String("loan_id", loanID),
			zap.String("repayment_id", repaymentID),
			zap.Error(err),
		)
		return err
	}
	if err := qtx.Update(ctx, l); err != nil {
		logger.Error("payroll loan repayment persist failed", zap.String("loan_id", loanID), zap.Error(err))
		return mapRepositoryError(err)
	}

	logger.Info("loan repayment posted from payroll",
		zap.String("loan_id", loanID),
		zap.String("repayment_id", repaymentID),
		zap.String("outstanding_balance", l.OutstandingBalance.StringFixed(2)),
		zap.String("status", string(l.Status)),
	)
	return nil
}

// markMissed flags the earliest scheduled repayment due before cutoff and
// defaults the loan once the missed count reaches the threshold. It returns
// false when nothing is past due.
func (s *service) markMissed(ctx context.Context, qtx Repository, l *Loan, cutoff time.Time) (bool, error) {
	var target *LoanRepayment
	for i := range l.Repayments {
		r := &l.Repayments[i]
		if r.Status == RepaymentScheduled {
			if r.DueDate.Before(cutoff) {
				target = r
			}
			break
		}
	}
	if target == nil {
		return false, nil
	}

	target.Status = RepaymentMissed
	if err := qtx.UpdateRepayment(ctx, target); err != nil {
		return false, mapRepositoryError(err)
	}
	if l.MissedCount() >= s.cfg.DefaultThreshold {
		now := time.Now().UTC()
		l.Status = StatusDefaulted
		l.ClosedAt = &now
	}
	return true, nil
}

func (s *service) MarkMissed(ctx context.Context, companyID, id string, req MarkMissedRequest) (LoanResponse, error) {
	asOf := Day(time.Now())
	if req.AsOf != "" {
		t, err := parseDate(req.AsOf)
		if err != nil {
			return LoanResponse{}, err
		}
		asOf = t
	}

	l, err := s.mutate(ctx, companyID, id, "loan mark missed", func(ctx context.Context, tx *sql.Tx, qtx Repository, l *Loan) error {
		if l.Status != StatusActive {
			return loanerrors.ErrLoanNotActive
		}
		marked, err := s.markMissed(ctx, qtx, l, asOf)
		if err != nil {
			return err
		}
		if !marked {
			return loanerrors.ErrNoRepaymentPastDue
		}
		return nil
	})
	if err != nil {
		return LoanResponse{}, err
	}
	return mapLoanToResponse(*l), nil
}

// SweepDelinquency marks every scheduled repayment that is more than the
// grace period past due as missed, one loan per transaction.
func (s *service) SweepDelinquency(ctx context.Context, asOf time.Time) (SweepResult, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	cutoff := Day(asOf).AddDate(0, 0, -s.cfg.GraceDays)

	refs, err := s.repo.FindPastDue(ctx, cutoff, sweepBatchSize)
	if err != nil {
		logger.Error("delinquency sweep load failed", zap.Error(err))
		return SweepResult{}, mapRepositoryError(err)
	}

	var result SweepResult
	for _, ref := range refs {
		if ctx.Err() != nil {
			break
		}
		result.LoansChecked++

		missed := 0
		l, err := s.mutate(ctx, ref.CompanyID.String(), ref.ID.String(), "loan sweep", func(ctx context.Context, tx *sql.Tx, qtx Repository, l *Loan) error {
			missed = 0
			for l.Status == StatusActive {
				marked, err := s.markMissed(ctx, qtx, l, cutoff)
				if err != nil {
					return err
				}
				if !marked {
					break
				}
				missed++
			}
			return nil
		})
		if err != nil {
			result.Failures++
			continue
		}
		result.RepaymentsMissed += missed
		if l.Status == StatusDefaulted {
			result.LoansDefaulted++
		}
	}

	logger.Info("delinquency sweep finished",
		zap.Time("cutoff", cutoff),
		zap.Int("loans_checked", result.LoansChecked),
		zap.Int("repayments_missed", result.RepaymentsMissed),
		zap.Int("loans_defaulted", result.LoansDefaulted),
		zap.Int("failures", result.Failures),
	)
	return result, nil
}

// DueDeductions returns, per active loan of the employee, the earliest
// unpaid repayment due on or before periodEnd that no other salary has
// reserved. Missed repayments are recovered before later ones.
func (s *service) DueDeductions(ctx context.Context, companyID, employeeID string, periodEnd time.Time, reserved []uuid.UUID) ([]Deduction, error) {
	loans, err := s.repo.FindActiveByEmployee(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("load due deductions failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	taken := make(map[uuid.UUID]bool, len(reserved))
	for _, id := range reserved {
		taken[id] = true
	}

	var out []Deduction
	for i := range loans {
		next := loans[i].nextUnreserved(taken)
		if next == nil || next.DueDate.After(periodEnd) {
			continue
		}
		out = append(out, Deduction{
			LoanID:      loans[i].ID,
			LoanNumber:  loans[i].LoanNumber,
			LoanType:    loans[i].LoanType,
			RepaymentID: next.ID,
			Sequence:    next.Sequence,
			DueDate:     next.DueDate,
			Amount:      next.Amount,
		})
	}
	return out, nil
}

func (s *service) GetLoan(ctx context.Context, companyID, id string) (LoanResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LoanResponse{}, loanerrors.ErrLoanNotFound
	}
	l, err := s.repo.FindByID(ctx, companyID, id, false)
	if err != nil {
		return LoanResponse{}, mapRepositoryError(err)
	}
	return mapLoanToResponse(*l), nil
}

func (s *service) ListLoans(ctx context.Context, companyID string, filter LoanQueryFilter) ([]LoanResponse, error) {
	loans, err := s.repo.FindAll(ctx, companyID, LoanFilter{
		EmployeeID: filter.EmployeeID,
		Status:     LoanStatus(filter.Status),
		LoanType:   LoanType(filter.LoanType),
	})
	if err != nil {
		s.logger.Error("list loans failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	out := make([]LoanResponse, len(loans))
	for i, l := range loans {
		out[i] = mapLoanToResponse(l)
	}
	return out, nil
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func mapLoanToResponse(l Loan) LoanResponse {
	var closedAt *string
	if l.ClosedAt != nil {
		s := l.ClosedAt.Format(time.RFC3339)
		closedAt = &s
	}

	resp := LoanResponse{
		ID:                 l.ID.String(),
		LoanNumber:         l.LoanNumber,
		EmployeeID:         l.EmployeeID.String(),
		LoanType:           string(l.LoanType),
		Amount:             l.Amount.StringFixed(2),
		InterestRate:       l.InterestRate.String(),
		TermMonths:         l.TermMonths,
		TotalRepayable:     l.TotalRepayable.StringFixed(2),
		OutstandingBalance: l.OutstandingBalance.StringFixed(2),
		MonthlyRepayment:   l.MonthlyRepayment.StringFixed(2),
		Status:             string(l.Status),
		StatusTone:         string(l.Status.Tone()),
		Reason:             l.Reason,
		Notes:              l.Notes,
		ApplicationDate:    l.ApplicationDate.Format(dateLayout),
		ApprovedBy:         uuidString(l.ApprovedBy),
		ApprovalDate:       formatDatePtr(l.ApprovalDate),
		DisbursementDate:   formatDatePtr(l.DisbursementDate),
		FirstRepaymentDate: formatDatePtr(l.FirstRepaymentDate),
		ClosedAt:           closedAt,
	}
	for _, r := range l.Repayments {
		resp.Repayments = append(resp.Repayments, RepaymentResponse{
			ID:               r.ID.String(),
			Sequence:         r.Sequence,
			DueDate:          r.DueDate.Format(dateLayout),
			Amount:           r.Amount.StringFixed(2),
			PrincipalPortion: r.PrincipalPortion.StringFixed(2),
			InterestPortion:  r.InterestPortion.StringFixed(2),
			BalanceAfter:     r.BalanceAfter.StringFixed(2),
			Status:           string(r.Status),
			StatusTone:       string(r.Status.Tone()),
			PaidDate:         formatDatePtr(r.PaidDate),
			SalaryID:         uuidString(r.SalaryID),
		})
	}
	return resp
}
