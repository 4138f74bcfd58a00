package payroll

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/loan"
	"go-payroll/internal/messaging/kafka"
	payrollerrors "go-payroll/internal/payroll/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type salaryMutation func(ctx context.Context, tx *sql.Tx, s *Salary) error

// mutate runs fn on a locked salary and saves it in one transaction.
func (s *service) mutate(ctx context.Context, companyID, id, op string, fn salaryMutation) (*Salary, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollerrors.ErrSalaryNotFound
	}
	unlock := s.locks.Lock(id)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error(op+" begin tx failed", zap.String("salary_id", id), zap.Error(err))
		return nil, apperror.Persistence(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	salary, err := qtx.FindSalaryByID(ctx, companyID, id, true)
	if err != nil {
		return nil, mapRepositoryError(err, payrollerrors.ErrSalaryNotFound)
	}

	if err := fn(ctx, tx, salary); err != nil {
		if apperror.Retryable(err) {
			logger.Error(op+" failed", zap.String("salary_id", id), zap.Error(err))
		} else {
			logger.Warn(op+" rejected",
				zap.String("salary_id", id),
				zap.String("status", string(salary.Status)),
				zap.Error(err),
			)
		}
		return nil, err
	}

	if err := qtx.UpdateSalary(ctx, salary); err != nil {
		logger.Error(op+" persist failed", zap.String("salary_id", id), zap.Error(err))
		return nil, mapRepositoryError(err, payrollerrors.ErrSalaryNotFound)
	}
	if err := tx.Commit(); err != nil {
		logger.Error(op+" commit failed", zap.String("salary_id", id), zap.Error(err))
		return nil, apperror.Persistence(err)
	}

	logger.Info(op+" completed",
		zap.String("salary_id", id),
		zap.String("employee_id", salary.EmployeeID.String()),
		zap.String("status", string(salary.Status)),
	)
	return salary, nil
}

func (s *service) enqueue(ctx context.Context, tx *sql.Tx, salary *Salary, eventType, topic string, payload any) error {
	event, err := kafka.NewOutboxEvent(ctx, aggregateSalary, salary.ID.String(), eventType, topic, payload)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "Failed to encode salary event", http.StatusInternalServerError)
	}
	if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
		return apperror.Persistence(err)
	}
	return nil
}

// Approve freezes a draft salary and asks the payslip renderer for a document.
func (s *service) Approve(ctx context.Context, companyID, id string, req ApproveSalaryRequest) (SalaryResponse, error) {
	if strings.TrimSpace(req.ApproverID) == "" {
		return SalaryResponse{}, payrollerrors.ErrApproverRequired
	}
	approver, err := uuid.Parse(req.ApproverID)
	if err != nil {
		return SalaryResponse{}, payrollerrors.ErrApproverRequired
	}

	salary, err := s.mutate(ctx, companyID, id, "salary approve", func(ctx context.Context, tx *sql.Tx, sal *Salary) error {
		if sal.Status != SalaryDraft {
			return payrollerrors.ErrSalaryNotDraft
		}
		now := time.Now().UTC()
		sal.Status = SalaryApproved
		sal.ApprovedBy = &approver
		sal.ApprovedAt = &now
		sal.PayslipStatus = PayslipRequested
		if req.Notes != nil {
			sal.Notes = req.Notes
		}

		return s.enqueue(ctx, tx, sal, events.PayslipRequestedEventType, events.PayslipRequestedTopic, events.PayslipRequestedEvent{
			EventType:   events.PayslipRequestedEventType,
			RequestID:   contextutil.GetRequestID(ctx),
			SalaryID:    sal.ID.String(),
			CompanyID:   sal.CompanyID.String(),
			EmployeeID:  sal.EmployeeID.String(),
			PayPeriodID: sal.PayPeriodID.String(),
			RequestedBy: approver.String(),
			OccurredAt:  now,
		})
	})
	if err != nil {
		return SalaryResponse{}, err
	}
	return mapSalaryToResponse(*salary), nil
}

// Pay settles an approved salary. Its loan repayment lines are posted to
// the loan ledger in the same transaction, so a rejected posting leaves the
// salary APPROVED.
func (s *service) Pay(ctx context.Context, companyID, id string, req PaySalaryRequest) (SalaryResponse, error) {
	salary, err := s.pay(ctx, companyID, id, req)
	if err != nil {
		return SalaryResponse{}, err
	}
	s.settle(ctx, salary)
	return mapSalaryToResponse(*salary), nil
}

func (s *service) pay(ctx context.Context, companyID, id string, req PaySalaryRequest) (*Salary, error) {
	reference := strings.TrimSpace(req.PaymentReference)
	if reference == "" {
		return nil, payrollerrors.ErrPaymentReferenceRequired
	}

	return s.mutate(ctx, companyID, id, "salary pay", func(ctx context.Context, tx *sql.Tx, sal *Salary) error {
		if sal.Status != SalaryApproved {
			return payrollerrors.ErrSalaryNotApproved
		}

		now := time.Now().UTC()
		for _, line := range sal.LoanLines() {
			if err := s.loans.PostRepaymentTx(ctx, tx, companyID, line.LoanID.String(), line.LoanRepaymentID.String(), loan.Day(now), &sal.ID); err != nil {
				return err
			}
		}

		sal.Status = SalaryPaid
		sal.PaidAt = &now
		sal.PaymentReference = &reference
		if req.Notes != nil {
			sal.Notes = req.Notes
		}

		return s.enqueue(ctx, tx, sal, events.SalaryPaidEventType, events.SalaryPaidTopic, events.SalaryPaidEvent{
			EventType:        events.SalaryPaidEventType,
			RequestID:        contextutil.GetRequestID(ctx),
			SalaryID:         sal.ID.String(),
			CompanyID:        sal.CompanyID.String(),
			EmployeeID:       sal.EmployeeID.String(),
			PayPeriodID:      sal.PayPeriodID.String(),
			NetSalary:        sal.NetSalary.StringFixed(2),
			PaymentReference: reference,
			OccurredAt:       now,
		})
	})
}

func (s *service) Cancel(ctx context.Context, companyID, id string, req CancelSalaryRequest) (SalaryResponse, error) {
	salary, err := s.mutate(ctx, companyID, id, "salary cancel", func(ctx context.Context, tx *sql.Tx, sal *Salary) error {
		if sal.Status != SalaryDraft && sal.Status != SalaryApproved {
			return payrollerrors.ErrSalaryNotCancellable
		}
		sal.Status = SalaryCancelled
		if req.Notes != nil {
			sal.Notes = req.Notes
		}
		return nil
	})
	if err != nil {
		return SalaryResponse{}, err
	}
	s.settle(ctx, salary)
	return mapSalaryToResponse(*salary), nil
}

// settle closes the salary's period when it was the last one outstanding.
// The salary change is already committed, so failures are only logged.
func (s *service) settle(ctx context.Context, salary *Salary) {
	if _, err := s.closeIfSettled(ctx, salary.CompanyID.String(), salary.PayPeriodID.String()); err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("auto close pay period failed",
			zap.String("pay_period_id", salary.PayPeriodID.String()),
			zap.Error(err),
		)
	}
}

// BulkPay pays each item in its own transaction; one failure does not undo
// the others.
func (s *service) BulkPay(ctx context.Context, companyID string, req BulkPaymentRequest) (BulkPaymentResult, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	if len(req.Payments) == 0 {
		return BulkPaymentResult{}, payrollerrors.ErrBulkPaymentEmpty
	}

	result := BulkPaymentResult{
		Successful: []string{},
		Failed:     []BulkPaymentFailure{},
	}
	periods := map[uuid.UUID]*Salary{}
	for _, item := range req.Payments {
		salary, err := s.pay(ctx, companyID, item.SalaryID, PaySalaryRequest{PaymentReference: item.PaymentReference})
		if err != nil {
			code, msg := describe(err)
			result.Failed = append(result.Failed, BulkPaymentFailure{SalaryID: item.SalaryID, Code: code, Message: msg})
			continue
		}
		result.Successful = append(result.Successful, item.SalaryID)
		periods[salary.PayPeriodID] = salary
	}
	for _, salary := range periods {
		s.settle(ctx, salary)
	}

	logger.Info("bulk payment finished",
		zap.Int("successful", len(result.Successful)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// MarkPayslipGenerated records the renderer's document. Redelivery of the
// same event overwrites the row with the same values.
func (s *service) MarkPayslipGenerated(ctx context.Context, companyID, salaryID, url string) error {
	logger := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(salaryID); err != nil {
		return payrollerrors.ErrSalaryNotFound
	}
	if strings.TrimSpace(url) == "" {
		return apperror.RequiredField("url")
	}

	updated, err := s.repo.MarkPayslipGenerated(ctx, companyID, salaryID, url, time.Now().UTC())
	if err != nil {
		logger.Error("record payslip failed", zap.String("salary_id", salaryID), zap.Error(err))
		return mapRepositoryError(err, payrollerrors.ErrSalaryNotFound)
	}
	if !updated {
		return payrollerrors.ErrSalaryNotFound
	}
	return nil
}

func (s *service) GetSalary(ctx context.Context, companyID, id string) (SalaryResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return SalaryResponse{}, payrollerrors.ErrSalaryNotFound
	}
	salary, err := s.repo.FindSalaryByID(ctx, companyID, id, false)
	if err != nil {
		return SalaryResponse{}, mapRepositoryError(err, payrollerrors.ErrSalaryNotFound)
	}
	return mapSalaryToResponse(*salary), nil
}

func (s *service) ListSalaries(ctx context.Context, companyID string, filter SalaryQueryFilter) ([]SalaryResponse, error) {
	status := SalaryStatus(filter.Status)
	if status != "" && !status.Valid() {
		return nil, payrollerrors.ErrInvalidStatusFilter
	}

	salaries, err := s.repo.FindSalaries(ctx, companyID, SalaryFilter{
		PayPeriodID: filter.PayPeriodID,
		EmployeeID:  filter.EmployeeID,
		Status:      status,
	})
	if err != nil {
		s.logger.Error("list salaries failed", zap.Error(err))
		return nil, mapRepositoryError(err, payrollerrors.ErrSalaryNotFound)
	}

	out := make([]SalaryResponse, len(salaries))
	for i, sal := range salaries {
		out[i] = mapSalaryToResponse(sal)
	}
	return out, nil
}
