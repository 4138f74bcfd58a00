package payroll

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go-payroll/internal/employee"
	"go-payroll/internal/loan"
	"go-payroll/internal/messaging/kafka"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/salarycomponent"
	"go-payroll/internal/shared/config"
	"go-payroll/internal/shared/contextutil"
	"go-payroll/internal/shared/keylock"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	dateLayout      = "2006-01-02"
	aggregateSalary = "salary"
)

// LoanLedger is the part of the loan engine payroll depends on.
type LoanLedger interface {
	DueDeductions(ctx context.Context, companyID, employeeID string, periodEnd time.Time, reserved []uuid.UUID) ([]loan.Deduction, error)
	PostRepaymentTx(ctx context.Context, tx *sql.Tx, companyID, loanID, repaymentID string, paidDate time.Time, salaryID *uuid.UUID) error
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	CreatePeriod(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PayPeriodResponse, error)
	GetPeriod(ctx context.Context, companyID, id string) (PayPeriodResponse, error)
	ListPeriods(ctx context.Context, companyID string, filter PeriodQueryFilter) ([]PayPeriodResponse, error)
	LockPeriod(ctx context.Context, companyID, id string) (PayPeriodResponse, error)
	ClosePeriod(ctx context.Context, companyID, id string) (PayPeriodResponse, error)

	Process(ctx context.Context, companyID, actorID, periodID string, req ProcessRequest) (RunResult, error)

	Approve(ctx context.Context, companyID, id string, req ApproveSalaryRequest) (SalaryResponse, error)
	Pay(ctx context.Context, companyID, id string, req PaySalaryRequest) (SalaryResponse, error)
	Cancel(ctx context.Context, companyID, id string, req CancelSalaryRequest) (SalaryResponse, error)
	BulkPay(ctx context.Context, companyID string, req BulkPaymentRequest) (BulkPaymentResult, error)
	MarkPayslipGenerated(ctx context.Context, companyID, salaryID, url string) error

	GetSalary(ctx context.Context, companyID, id string) (SalaryResponse, error)
	ListSalaries(ctx context.Context, companyID string, filter SalaryQueryFilter) ([]SalaryResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Service
	resolver  salarycomponent.Resolver
	loans     LoanLedger
	outbox    kafka.OutboxRepository
	rdb       *redis.Client
	cfg       config.PayrollConfig
	runLocks  *keylock.Locker
	locks     *keylock.Locker
	logger    *zap.Logger
}

// NewService wires the payroll engine. rdb may be nil, in which case commit
// runs are only exclusive within this process.
func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Service,
	resolver salarycomponent.Resolver,
	loans LoanLedger,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	cfg config.PayrollConfig,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employees,
		resolver:  resolver,
		loans:     loans,
		outbox:    outboxRepo,
		rdb:       rdb,
		cfg:       cfg,
		runLocks:  keylock.New(),
		locks:     keylock.New(),
		logger:    l,
	}
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, payrollerrors.ErrInvalidDate
	}
	return t, nil
}

func (s *service) CreatePeriod(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PayPeriodResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("create pay period requested",
		zap.String("company_id", companyID),
		zap.String("name", req.Name),
	)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return PayPeriodResponse{}, payrollerrors.ErrPeriodNameRequired
	}
	company, err := uuid.Parse(companyID)
	if err != nil {
		return PayPeriodResponse{}, payrollerrors.ErrInvalidActor
	}
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return PayPeriodResponse{}, payrollerrors.ErrInvalidActor
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return PayPeriodResponse{}, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return PayPeriodResponse{}, err
	}
	payment, err := parseDate(req.PaymentDate)
	if err != nil {
		return PayPeriodResponse{}, err
	}
	if end.Before(start) || payment.Before(end) {
		logger.Warn("pay period window rejected",
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
			zap.String("payment_date", req.PaymentDate),
		)
		return PayPeriodResponse{}, payrollerrors.ErrInvalidPeriodWindow
	}

	open, err := s.repo.HasOpenPeriod(ctx, companyID)
	if err != nil {
		logger.Error("open period lookup failed", zap.Error(err))
		return PayPeriodResponse{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	if open {
		return PayPeriodResponse{}, payrollerrors.ErrOpenPeriodExists
	}

	period := &PayPeriod{
		ID:          uuid.New(),
		CompanyID:   company,
		Name:        name,
		StartDate:   start,
		EndDate:     end,
		PaymentDate: payment,
		Status:      PeriodOpen,
		CreatedBy:   actor,
	}
	if err := s.repo.CreatePeriod(ctx, period); err != nil {
		logger.Error("create pay period failed", zap.Error(err))
		return PayPeriodResponse{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}

	logger.Info("pay period created",
		zap.String("pay_period_id", period.ID.String()),
		zap.String("name", period.Name),
	)
	return mapPeriodToResponse(*period), nil
}

func (s *service) GetPeriod(ctx context.Context, companyID, id string) (PayPeriodResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return PayPeriodResponse{}, payrollerrors.ErrPeriodNotFound
	}
	p, err := s.repo.FindPeriodByID(ctx, companyID, id)
	if err != nil {
		return PayPeriodResponse{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	return mapPeriodToResponse(*p), nil
}

func (s *service) ListPeriods(ctx context.Context, companyID string, filter PeriodQueryFilter) ([]PayPeriodResponse, error) {
	periods, err := s.repo.FindPeriods(ctx, companyID, PayPeriodStatus(filter.Status))
	if err != nil {
		s.logger.Error("list pay periods failed", zap.Error(err))
		return nil, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}

	out := make([]PayPeriodResponse, len(periods))
	for i, p := range periods {
		out[i] = mapPeriodToResponse(p)
	}
	return out, nil
}

// LockPeriod moves an open period to PROCESSING. The conditional update
// waits for in-flight salary upserts, which hold a share lock on the period.
func (s *service) LockPeriod(ctx context.Context, companyID, id string) (PayPeriodResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return PayPeriodResponse{}, payrollerrors.ErrPeriodNotFound
	}
	changed, err := s.repo.TransitionPeriod(ctx, companyID, id, PeriodOpen, PeriodProcessing, time.Now().UTC())
	if err != nil {
		logger.Error("lock pay period failed", zap.String("pay_period_id", id), zap.Error(err))
		return PayPeriodResponse{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}

	p, err := s.repo.FindPeriodByID(ctx, companyID, id)
	if err != nil {
		return PayPeriodResponse{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	if !changed {
		logger.Warn("lock pay period rejected",
			zap.String("pay_period_id", id),
			zap.String("status", string(p.Status)),
		)
		return PayPeriodResponse{}, payrollerrors.ErrPeriodNotOpen
	}

	logger.Info("pay period locked", zap.String("pay_period_id", id))
	return mapPeriodToResponse(*p), nil
}

func (s *service) ClosePeriod(ctx context.Context, companyID, id string) (PayPeriodResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return PayPeriodResponse{}, payrollerrors.ErrPeriodNotFound
	}
	p, err := s.repo.FindPeriodByID(ctx, companyID, id)
	if err != nil {
		return PayPeriodResponse{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	if p.Status != PeriodProcessing {
		return PayPeriodResponse{}, payrollerrors.ErrPeriodNotProcessing
	}

	closed, err := s.closeIfSettled(ctx, companyID, id)
	if err != nil {
		return PayPeriodResponse{}, err
	}
	if !closed {
		logger.Warn("close pay period rejected", zap.String("pay_period_id", id))
		return PayPeriodResponse{}, payrollerrors.ErrPeriodHasUnsettledSalaries
	}

	p, err = s.repo.FindPeriodByID(ctx, companyID, id)
	if err != nil {
		return PayPeriodResponse{}, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	return mapPeriodToResponse(*p), nil
}

// closeIfSettled closes a PROCESSING period once no salary of it is left
// unpaid. Salaries cannot be added to a PROCESSING period, so the count
// cannot grow between the check and the update.
func (s *service) closeIfSettled(ctx context.Context, companyID, periodID string) (bool, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	unsettled, err := s.repo.CountUnsettled(ctx, companyID, periodID)
	if err != nil {
		logger.Error("count unsettled salaries failed", zap.String("pay_period_id", periodID), zap.Error(err))
		return false, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	if unsettled > 0 {
		return false, nil
	}

	closed, err := s.repo.TransitionPeriod(ctx, companyID, periodID, PeriodProcessing, PeriodClosed, time.Now().UTC())
	if err != nil {
		logger.Error("close pay period failed", zap.String("pay_period_id", periodID), zap.Error(err))
		return false, mapRepositoryError(err, payrollerrors.ErrPeriodNotFound)
	}
	if closed {
		logger.Info("pay period closed", zap.String("pay_period_id", periodID))
	}
	return closed, nil
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func mapPeriodToResponse(p PayPeriod) PayPeriodResponse {
	return PayPeriodResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		StartDate:   p.StartDate.Format(dateLayout),
		EndDate:     p.EndDate.Format(dateLayout),
		PaymentDate: p.PaymentDate.Format(dateLayout),
		Status:      string(p.Status),
		StatusTone:  string(p.Status.Tone()),
		LockedAt:    formatTimePtr(p.LockedAt),
		ClosedAt:    formatTimePtr(p.ClosedAt),
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func mapLinesToResponse(lines []Line) []SalaryDetailResponse {
	out := make([]SalaryDetailResponse, len(lines))
	for i, l := range lines {
		out[i] = SalaryDetailResponse{
			ComponentCode:   l.ComponentCode,
			ComponentName:   l.ComponentName,
			ComponentType:   string(l.ComponentType),
			Amount:          l.Amount.StringFixed(2),
			ShowOnPayslip:   l.ShowOnPayslip,
			LoanID:          uuidString(l.LoanID),
			LoanRepaymentID: uuidString(l.LoanRepaymentID),
		}
	}
	return out
}

func mapSalaryToResponse(s Salary) SalaryResponse {
	resp := SalaryResponse{
		ID:                s.ID.String(),
		EmployeeID:        s.EmployeeID.String(),
		PayPeriodID:       s.PayPeriodID.String(),
		GrossSalary:       s.GrossSalary.StringFixed(2),
		TotalDeductions:   s.TotalDeductions.StringFixed(2),
		TotalTax:          s.TotalTax.StringFixed(2),
		NetSalary:         s.NetSalary.StringFixed(2),
		Status:            string(s.Status),
		StatusTone:        string(s.Status.Tone()),
		CalculatedAt:      s.CalculatedAt.UTC().Format(time.RFC3339),
		ApprovedBy:        uuidString(s.ApprovedBy),
		ApprovedAt:        formatTimePtr(s.ApprovedAt),
		PaidAt:            formatTimePtr(s.PaidAt),
		PaymentReference:  s.PaymentReference,
		Notes:             s.Notes,
		PayslipStatus:     string(s.PayslipStatus),
		PayslipStatusTone: string(s.PayslipStatus.Tone()),
		PayslipURL:        s.PayslipURL,
		Details:           make([]SalaryDetailResponse, 0, len(s.Details)),
	}
	for _, d := range s.Details {
		resp.Details = append(resp.Details, SalaryDetailResponse{
			ComponentCode:   d.ComponentCode,
			ComponentName:   d.ComponentName,
			ComponentType:   string(d.ComponentType),
			Amount:          d.Amount.StringFixed(2),
			ShowOnPayslip:   d.ShowOnPayslip,
			LoanID:          uuidString(d.LoanID),
			LoanRepaymentID: uuidString(d.LoanRepaymentID),
		})
	}
	return resp
}
