package salarycomponent

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"go-payroll/internal/employee"
	"go-payroll/internal/formula"
	salarycomponenterrors "go-payroll/internal/salarycomponent/errors"
	"go-payroll/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

var (
	codePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	hundred     = decimal.NewFromInt(100)

	// Variables every formula sees; a component code must not shadow them.
	formulaBuiltins = map[string]struct{}{
		"baseSalary":   {},
		"grossSalary":  {},
		"taxableGross": {},
	}
)

//go:generate mockgen -source=salary_component_service.go -destination=mock/salary_component_service_mock.go -package=mock
type Service interface {
	CreateComponent(ctx context.Context, companyID string, req CreateComponentRequest) (ComponentResponse, error)
	SupersedeComponent(ctx context.Context, companyID, id string, req SupersedeComponentRequest) (ComponentResponse, error)
	GetComponent(ctx context.Context, companyID, id string) (ComponentResponse, error)
	ListComponents(ctx context.Context, companyID string, filter ComponentQueryFilter) ([]ComponentResponse, error)

	AssignToEmployee(ctx context.Context, companyID, employeeID string, req AssignComponentRequest) (AssignmentResponse, error)
	EndAssignment(ctx context.Context, companyID, employeeID, assignmentID string, req EndAssignmentRequest) (AssignmentResponse, error)
	EndAllForEmployee(ctx context.Context, companyID, employeeID string, effectiveTo time.Time) (int, error)
	ListAssignments(ctx context.Context, companyID, employeeID string) ([]AssignmentResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Service
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, employees employee.Service, logger ...*zap.Logger) Service {
	l := zap.L().Named("salarycomponent.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salarycomponent.service")
	}
	return &service{db: db, repo: repo, employees: employees, logger: l}
}

// definition is the part of a component shared by create and supersede.
type definition struct {
	typ             ComponentType
	isBase          bool
	calculationType CalculationType
	value           decimal.Decimal
	formula         *string
	percentageBase  *PercentageBase
}

func validateDefinition(d definition) error {
	if !d.typ.Valid() {
		return salarycomponenterrors.ErrInvalidComponentType
	}
	if !d.calculationType.Valid() {
		return salarycomponenterrors.ErrInvalidCalculationType
	}
	if d.percentageBase != nil && !d.percentageBase.Valid() {
		return salarycomponenterrors.ErrInvalidPercentageBase
	}
	if d.isBase {
		if d.typ != TypeEarning {
			return salarycomponenterrors.ErrBaseMustBeEarning
		}
		if d.calculationType != CalculationFixed {
			return salarycomponenterrors.ErrBaseMustBeFixed
		}
	}

	switch d.calculationType {
	case CalculationFixed:
		if d.value.IsNegative() {
			return salarycomponenterrors.ErrNegativeValue
		}
	case CalculationPercentage:
		if d.value.IsNegative() || d.value.GreaterThan(hundred) {
			return salarycomponenterrors.ErrPercentageOutOfRange
		}
	case CalculationFormula:
		if d.formula == nil || strings.TrimSpace(*d.formula) == "" {
			return salarycomponenterrors.ErrFormulaRequired
		}
		if err := formula.Validate(*d.formula); err != nil {
			return err
		}
	}
	return nil
}

func validateCode(code string) error {
	if !codePattern.MatchString(code) {
		return salarycomponenterrors.ErrInvalidCode
	}
	if _, builtin := formulaBuiltins[code]; builtin || formula.Reserved(code) {
		return salarycomponenterrors.ErrReservedCode
	}
	return nil
}

func parseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return Day(fallback), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, salarycomponenterrors.ErrInvalidDate
	}
	return t, nil
}

func parseUUIDPtr(s *string) *uuid.UUID {
	if s == nil || *s == "" {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

func percentageBasePtr(s *string) *PercentageBase {
	if s == nil || *s == "" {
		return nil
	}
	b := PercentageBase(*s)
	return &b
}

func normalizeCountry(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	c := strings.ToUpper(*s)
	return &c
}

func (s *service) CreateComponent(ctx context.Context, companyID string, req CreateComponentRequest) (ComponentResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("create salary component requested",
		zap.String("company_id", companyID),
		zap.String("code", req.Code),
	)

	if err := validateCode(req.Code); err != nil {
		return ComponentResponse{}, err
	}
	def := definition{
		typ:             ComponentType(req.Type),
		isBase:          req.IsBase,
		calculationType: CalculationType(req.CalculationType),
		value:           req.Value,
		formula:         req.Formula,
		percentageBase:  percentageBasePtr(req.PercentageBase),
	}
	if err := validateDefinition(def); err != nil {
		logger.Warn("create salary component validation failed", zap.String("code", req.Code), zap.Error(err))
		return ComponentResponse{}, err
	}
	activeFrom, err := parseDate(req.ActiveFrom, time.Now())
	if err != nil {
		return ComponentResponse{}, err
	}

	exists, err := s.repo.CodeExists(ctx, companyID, req.Code)
	if err != nil {
		logger.Error("check component code failed", zap.Error(err))
		return ComponentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
	}
	if exists {
		return ComponentResponse{}, salarycomponenterrors.ErrComponentCodeExists
	}

	showOnPayslip := true
	if req.ShowOnPayslip != nil {
		showOnPayslip = *req.ShowOnPayslip
	}

	comp := &SalaryComponent{
		ID:              uuid.New(),
		CompanyID:       uuid.MustParse(companyID),
		Code:            req.Code,
		Name:            req.Name,
		Type:            def.typ,
		IsBase:          def.isBase,
		CalculationType: def.calculationType,
		Value:           def.value,
		Formula:         def.formula,
		PercentageBase:  def.percentageBase,
		Taxable:         req.Taxable,
		ShowOnPayslip:   showOnPayslip,
		RoleID:          parseUUIDPtr(req.RoleID),
		Country:         normalizeCountry(req.Country),
		SortOrder:       req.SortOrder,
		Version:         1,
		ActiveFrom:      activeFrom,
	}
	if err := s.repo.CreateComponent(ctx, comp); err != nil {
		logger.Error("create salary component persist failed", zap.Error(err))
		return ComponentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
	}

	logger.Info("salary component created",
		zap.String("component_id", comp.ID.String()),
		zap.String("code", comp.Code),
	)
	return mapComponentToResponse(*comp), nil
}

// SupersedeComponent closes the latest version of a component and creates
// the next one in a single transaction.
func (s *service) SupersedeComponent(ctx context.Context, companyID, id string, req SupersedeComponentRequest) (ComponentResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("supersede salary component requested",
		zap.String("company_id", companyID),
		zap.String("component_id", id),
	)

	activeFrom, err := parseDate(req.ActiveFrom, time.Now())
	if err != nil {
		return ComponentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("supersede component begin tx failed", zap.Error(err))
		return ComponentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	current, err := qtx.FindComponentByID(ctx, companyID, id, true)
	if err != nil {
		return ComponentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
	}
	if current.SupersededByID != nil {
		return ComponentResponse{}, salarycomponenterrors.ErrComponentSuperseded
	}
	if !activeFrom.After(current.ActiveFrom) {
		return ComponentResponse{}, salarycomponenterrors.ErrInvalidActiveFrom
	}

	def := definition{
		typ:             current.Type,
		isBase:          current.IsBase,
		calculationType: CalculationType(req.CalculationType),
		value:           req.Value,
		formula:         req.Formula,
		percentageBase:  percentageBasePtr(req.PercentageBase),
	}
	if err := validateDefinition(def); err != nil {
		logger.Warn("supersede salary component validation failed", zap.String("code", current.Code), zap.Error(err))
		return ComponentResponse{}, err
	}

	showOnPayslip := current.ShowOnPayslip
	if req.ShowOnPayslip != nil {
		showOnPayslip = *req.ShowOnPayslip
	}

	next := &SalaryComponent{
		ID:              uuid.New(),
		CompanyID:       current.CompanyID,
		Code:            current.Code,
		Name:            req.Name,
		Type:            current.Type,
		IsBase:          current.IsBase,
		CalculationType: def.calculationType,
		Value:           def.value,
		Formula:         def.formula,
		PercentageBase:  def.percentageBase,
		Taxable:         req.Taxable,
		ShowOnPayslip:   showOnPayslip,
		RoleID:          parseUUIDPtr(req.RoleID),
		Country:         normalizeCountry(req.Country),
		SortOrder:       req.SortOrder,
		Version:         current.Version + 1,
		ActiveFrom:      activeFrom,
	}
	if err := qtx.CreateComponent(ctx, next); err != nil {
		logger.Error("supersede component create version failed", zap.Error(err))
		return ComponentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
	}
	if err := qtx.CloseComponentVersion(ctx, companyID, current.ID.String(), activeFrom, next.ID.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ComponentResponse{}, salarycomponenterrors.ErrComponentSuperseded
		}
		logger.Error("supersede component close version failed", zap.Error(err))
		return ComponentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("supersede component commit failed", zap.Error(err))
		return ComponentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
	}

	logger.Info("salary component superseded",
		zap.String("code", next.Code),
		zap.Int("version", next.Version),
		zap.String("component_id", next.ID.String()),
	)
	return mapComponentToResponse(*next), nil
}

func (s *service) GetComponent(ctx context.Context, companyID, id string) (ComponentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ComponentResponse{}, salarycomponenterrors.ErrComponentNotFound
	}
	comp, err := s.repo.FindComponentByID(ctx, companyID, id, false)
	if err != nil {
		return ComponentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
	}
	return mapComponentToResponse(*comp), nil
}

func (s *service) ListComponents(ctx context.Context, companyID string, filter ComponentQueryFilter) ([]ComponentResponse, error) {
	f := ComponentFilter{
		Code:           filter.Code,
		Type:           ComponentType(filter.Type),
		IncludeHistory: filter.IncludeHistory,
	}
	if filter.AsOf != "" {
		asOf, err := parseDate(filter.AsOf, time.Now())
		if err != nil {
			return nil, err
		}
		f.AsOf = &asOf
	}

	comps, err := s.repo.FindComponents(ctx, companyID, f)
	if err != nil {
		s.logger.Error("list salary components failed", zap.Error(err))
		return nil, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
	}

	out := make([]ComponentResponse, len(comps))
	for i, c := range comps {
		out[i] = mapComponentToResponse(c)
	}
	return out, nil
}

// AssignToEmployee appends an assignment and closes the employee's open
// assignment of the same code on the new EffectiveFrom.
func (s *service) AssignToEmployee(ctx context.Context, companyID, employeeID string, req AssignComponentRequest) (AssignmentResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	logger.Debug("assign salary component requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", employeeID),
		zap.String("component_id", req.ComponentID),
	)

	effectiveFrom, err := parseDate(req.EffectiveFrom, time.Now())
	if err != nil {
		return AssignmentResponse{}, err
	}
	empl, err := s.employees.GetByID(ctx, companyID, employeeID)
	if err != nil {
		return AssignmentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("assign component begin tx failed", zap.Error(err))
		return AssignmentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	comp, err := qtx.FindComponentByID(ctx, companyID, req.ComponentID, false)
	if err != nil {
		return AssignmentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrComponentNotFound)
	}
	if !comp.ActiveOn(effectiveFrom) {
		return AssignmentResponse{}, salarycomponenterrors.ErrComponentNotActive
	}
	if err := validateDefinition(definition{
		typ:             comp.Type,
		isBase:          comp.IsBase,
		calculationType: comp.CalculationType,
		value:           req.Value,
		formula:         comp.Formula,
		percentageBase:  comp.PercentageBase,
	}); err != nil {
		return AssignmentResponse{}, err
	}

	latest, err := qtx.FindLatestAssignment(ctx, companyID, employeeID, comp.Code)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		logger.Error("assign component load latest failed", zap.Error(err))
		return AssignmentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	case latest.EffectiveTo == nil:
		if !effectiveFrom.After(latest.EffectiveFrom) {
			return AssignmentResponse{}, salarycomponenterrors.ErrBackdatedAssignment
		}
		if err := qtx.CloseAssignment(ctx, companyID, latest.ID.String(), effectiveFrom); err != nil {
			logger.Error("assign component close previous failed", zap.Error(err))
			return AssignmentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
		}
	case effectiveFrom.Before(*latest.EffectiveTo):
		return AssignmentResponse{}, salarycomponenterrors.ErrBackdatedAssignment
	}

	assignment := &EmployeeSalaryComponent{
		ID:            uuid.New(),
		CompanyID:     comp.CompanyID,
		EmployeeID:    empl.ID,
		ComponentID:   comp.ID,
		ComponentCode: comp.Code,
		Value:         req.Value,
		EffectiveFrom: effectiveFrom,
		IsActive:      true,
	}
	if err := qtx.CreateAssignment(ctx, assignment); err != nil {
		logger.Error("assign component persist failed", zap.Error(err))
		return AssignmentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("assign component commit failed", zap.Error(err))
		return AssignmentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}

	logger.Info("salary component assigned",
		zap.String("assignment_id", assignment.ID.String()),
		zap.String("employee_id", employeeID),
		zap.String("code", comp.Code),
	)
	return mapAssignmentToResponse(*assignment), nil
}

func (s *service) EndAssignment(ctx context.Context, companyID, employeeID, assignmentID string, req EndAssignmentRequest) (AssignmentResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	effectiveTo, err := parseDate(req.EffectiveTo, time.Now())
	if err != nil {
		return AssignmentResponse{}, err
	}
	if _, err := uuid.Parse(assignmentID); err != nil {
		return AssignmentResponse{}, salarycomponenterrors.ErrAssignmentNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("end assignment begin tx failed", zap.Error(err))
		return AssignmentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	assignment, err := qtx.FindAssignmentByID(ctx, companyID, employeeID, assignmentID, true)
	if err != nil {
		return AssignmentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}
	if assignment.EffectiveTo != nil {
		return AssignmentResponse{}, salarycomponenterrors.ErrAssignmentAlreadyEnded
	}
	if !effectiveTo.After(assignment.EffectiveFrom) {
		return AssignmentResponse{}, salarycomponenterrors.ErrInvalidEffectiveTo
	}

	if err := qtx.CloseAssignment(ctx, companyID, assignmentID, effectiveTo); err != nil {
		logger.Error("end assignment persist failed", zap.Error(err))
		return AssignmentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}
	if err := tx.Commit(); err != nil {
		logger.Error("end assignment commit failed", zap.Error(err))
		return AssignmentResponse{}, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}

	assignment.EffectiveTo = &effectiveTo
	assignment.IsActive = false
	logger.Info("salary component assignment ended",
		zap.String("assignment_id", assignmentID),
		zap.String("effective_to", effectiveTo.Format(dateLayout)),
	)
	return mapAssignmentToResponse(*assignment), nil
}

// EndAllForEmployee closes every open assignment of a leaver. Assignments
// starting on or after effectiveTo end on their own start date, which makes
// them never effective. Already closed rows are untouched, so redelivered
// termination events are harmless.
func (s *service) EndAllForEmployee(ctx context.Context, companyID, employeeID string, effectiveTo time.Time) (int, error) {
	logger := contextutil.GetLogger(ctx, s.logger)
	effectiveTo = Day(effectiveTo)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("end all assignments begin tx failed", zap.Error(err))
		return 0, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	open, err := qtx.FindOpenAssignments(ctx, companyID, employeeID)
	if err != nil {
		logger.Error("end all assignments load failed", zap.Error(err))
		return 0, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}

	for _, a := range open {
		end := effectiveTo
		if end.Before(a.EffectiveFrom) {
			end = a.EffectiveFrom
		}
		if err := qtx.CloseAssignment(ctx, companyID, a.ID.String(), end); err != nil {
			logger.Error("end all assignments close failed", zap.String("assignment_id", a.ID.String()), zap.Error(err))
			return 0, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("end all assignments commit failed", zap.Error(err))
		return 0, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}
	return len(open), nil
}

func (s *service) ListAssignments(ctx context.Context, companyID, employeeID string) ([]AssignmentResponse, error) {
	assignments, err := s.repo.FindAssignments(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("list assignments failed", zap.Error(err))
		return nil, mapRepositoryError(err, salarycomponenterrors.ErrAssignmentNotFound)
	}
	out := make([]AssignmentResponse, len(assignments))
	for i, a := range assignments {
		out[i] = mapAssignmentToResponse(a)
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

func mapComponentToResponse(c SalaryComponent) ComponentResponse {
	var base *string
	if c.PercentageBase != nil {
		b := string(*c.PercentageBase)
		base = &b
	}
	return ComponentResponse{
		ID:              c.ID.String(),
		Code:            c.Code,
		Name:            c.Name,
		Type:            string(c.Type),
		IsBase:          c.IsBase,
		CalculationType: string(c.CalculationType),
		Value:           c.Value.String(),
		Formula:         c.Formula,
		PercentageBase:  base,
		Taxable:         c.Taxable,
		ShowOnPayslip:   c.ShowOnPayslip,
		RoleID:          uuidString(c.RoleID),
		Country:         c.Country,
		SortOrder:       c.SortOrder,
		Version:         c.Version,
		ActiveFrom:      c.ActiveFrom.Format(dateLayout),
		ActiveTo:        formatDatePtr(c.ActiveTo),
		SupersededByID:  uuidString(c.SupersededByID),
	}
}

func mapAssignmentToResponse(a EmployeeSalaryComponent) AssignmentResponse {
	return AssignmentResponse{
		ID:            a.ID.String(),
		EmployeeID:    a.EmployeeID.String(),
		ComponentID:   a.ComponentID.String(),
		ComponentCode: a.ComponentCode,
		Value:         a.Value.String(),
		EffectiveFrom: a.EffectiveFrom.Format(dateLayout),
		EffectiveTo:   formatDatePtr(a.EffectiveTo),
		IsActive:      a.IsActive,
	}
}
