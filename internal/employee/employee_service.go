package employee

import (
	"context"
	"time"

	employeeerrors "go-payroll/internal/employee/errors"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	GetByID(ctx context.Context, companyID, id string) (Employee, error)
	GetActive(ctx context.Context, companyID, id string) (Employee, error)
	ListEligible(ctx context.Context, companyID string, periodEnd time.Time) ([]Employee, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (Employee, error) {
	s.logger.Debug("get employee requested",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("company_id", companyID),
		zap.String("employee_id", id),
	)
	if _, err := uuid.Parse(id); err != nil {
		return Employee{}, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		mapped := mapRepositoryError(err)
		if mapped != employeeerrors.ErrEmployeeNotFound {
			s.logger.Error("get employee failed", zap.String("employee_id", id), zap.Error(err))
		}
		return Employee{}, mapped
	}
	return *empl, nil
}

// GetActive is GetByID restricted to employees currently on payroll.
func (s *service) GetActive(ctx context.Context, companyID, id string) (Employee, error) {
	empl, err := s.GetByID(ctx, companyID, id)
	if err != nil {
		return Employee{}, err
	}
	if !empl.EligibleOn(time.Now().UTC()) {
		s.logger.Warn("employee not active",
			zap.String("employee_id", id),
			zap.String("status", string(empl.Status)),
		)
		return Employee{}, employeeerrors.ErrEmployeeNotActive
	}
	return empl, nil
}

func (s *service) ListEligible(ctx context.Context, companyID string, periodEnd time.Time) ([]Employee, error) {
	s.logger.Debug("list eligible employees requested",
		zap.String("company_id", companyID),
		zap.Time("period_end", periodEnd),
	)
	empls, err := s.repo.FindEligibleForPeriod(ctx, companyID, periodEnd)
	if err != nil {
		s.logger.Error("list eligible employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	// Storage filters already; re-check so a lagging replica cannot pay a leaver.
	out := empls[:0]
	for _, e := range empls {
		if e.EligibleOn(periodEnd) {
			out = append(out, e)
		}
	}
	return out, nil
}
