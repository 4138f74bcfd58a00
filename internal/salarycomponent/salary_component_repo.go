package salarycomponent

import (
	"context"
	"database/sql"
	"time"

	"go-payroll/internal/shared/txdb"
	"go-payroll/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=salary_component_repo.go -destination=mock/salary_component_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateComponent(ctx context.Context, c *SalaryComponent) error
	CloseComponentVersion(ctx context.Context, companyID, id string, activeTo time.Time, supersededByID string) error
	FindComponentByID(ctx context.Context, companyID, id string, forUpdate bool) (*SalaryComponent, error)
	CodeExists(ctx context.Context, companyID, code string) (bool, error)
	FindComponents(ctx context.Context, companyID string, filter ComponentFilter) ([]SalaryComponent, error)
	FindScopedComponents(ctx context.Context, companyID string, roleID *string, country string, asOf time.Time) ([]SalaryComponent, error)
	FindComponentsByCodes(ctx context.Context, companyID string, codes []string, asOf time.Time) ([]SalaryComponent, error)

	CreateAssignment(ctx context.Context, a *EmployeeSalaryComponent) error
	CloseAssignment(ctx context.Context, companyID, id string, effectiveTo time.Time) error
	FindAssignmentByID(ctx context.Context, companyID, employeeID, id string, forUpdate bool) (*EmployeeSalaryComponent, error)
	FindLatestAssignment(ctx context.Context, companyID, employeeID, code string) (*EmployeeSalaryComponent, error)
	FindOpenAssignments(ctx context.Context, companyID, employeeID string) ([]EmployeeSalaryComponent, error)
	FindAssignmentsEffectiveOn(ctx context.Context, companyID, employeeID string, asOf time.Time) ([]EmployeeSalaryComponent, error)
	FindAssignments(ctx context.Context, companyID, employeeID string) ([]EmployeeSalaryComponent, error)
}

// ComponentFilter narrows FindComponents. A zero AsOf with IncludeHistory
// false returns only the latest version of each code.
type ComponentFilter struct {
	Code           string
	Type           ComponentType
	AsOf           *time.Time
	IncludeHistory bool
}

type repository struct {
	db      *gorm.DB
	tx      *sql.Tx
	timeout time.Duration
}

func NewRepository(db *gorm.DB, timeout time.Duration) Repository {
	return &repository{db: db, timeout: timeout}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db:      r.db,
		tx:      tx,
		timeout: r.timeout,
	}
}

func (r *repository) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	return txdb.Session(ctx, r.db, r.tx, r.timeout)
}

func activeOn(asOf time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("active_from <= ?", asOf).
			Where("active_to IS NULL OR active_to > ?", asOf)
	}
}

func (r *repository) CreateComponent(ctx context.Context, c *SalaryComponent) error {
	db, cancel := r.session(ctx)
	defer cancel()
	return db.Create(c).Error
}

func (r *repository) CloseComponentVersion(ctx context.Context, companyID, id string, activeTo time.Time, supersededByID string) error {
	db, cancel := r.session(ctx)
	defer cancel()

	res := db.Model(&SalaryComponent{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND superseded_by_id IS NULL", id).
		Updates(map[string]any{
			"active_to":        activeTo,
			"superseded_by_id": supersededByID,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindComponentByID(ctx context.Context, companyID, id string, forUpdate bool) (*SalaryComponent, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	q := db.Scopes(tenant.Scope(companyID))
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var c SalaryComponent
	err := q.First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repository) CodeExists(ctx context.Context, companyID, code string) (bool, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var count int64
	err := db.Model(&SalaryComponent{}).
		Scopes(tenant.Scope(companyID)).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindComponents(ctx context.Context, companyID string, filter ComponentFilter) ([]SalaryComponent, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	q := db.Scopes(tenant.Scope(companyID))
	if filter.Code != "" {
		q = q.Where("code = ?", filter.Code)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	switch {
	case filter.AsOf != nil:
		q = q.Scopes(activeOn(*filter.AsOf))
	case !filter.IncludeHistory:
		q = q.Where("superseded_by_id IS NULL")
	}

	var out []SalaryComponent
	err := q.Order("sort_order ASC, code ASC, version DESC").Find(&out).Error
	return out, err
}

// FindScopedComponents returns versions active on asOf whose role/country
// scope selects the employee: at least one scope set, every set scope equal.
func (r *repository) FindScopedComponents(ctx context.Context, companyID string, roleID *string, country string, asOf time.Time) ([]SalaryComponent, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	q := db.Scopes(tenant.Scope(companyID), activeOn(asOf)).
		Where("role_id IS NOT NULL OR country IS NOT NULL").
		Where("country IS NULL OR country = ?", country)
	if roleID != nil {
		q = q.Where("role_id IS NULL OR role_id = ?", *roleID)
	} else {
		q = q.Where("role_id IS NULL")
	}

	var out []SalaryComponent
	err := q.Find(&out).Error
	return out, err
}

func (r *repository) FindComponentsByCodes(ctx context.Context, companyID string, codes []string, asOf time.Time) ([]SalaryComponent, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	db, cancel := r.session(ctx)
	defer cancel()

	var out []SalaryComponent
	err := db.Scopes(tenant.Scope(companyID), activeOn(asOf)).
		Where("code IN ?", codes).
		Find(&out).Error
	return out, err
}

func (r *repository) CreateAssignment(ctx context.Context, a *EmployeeSalaryComponent) error {
	db, cancel := r.session(ctx)
	defer cancel()
	return db.Create(a).Error
}

// CloseAssignment sets EffectiveTo on an open row only, so it is written once.
func (r *repository) CloseAssignment(ctx context.Context, companyID, id string, effectiveTo time.Time) error {
	db, cancel := r.session(ctx)
	defer cancel()

	res := db.Model(&EmployeeSalaryComponent{}).
		Scopes(tenant.Scope(companyID)).
		Where("id = ? AND effective_to IS NULL", id).
		Updates(map[string]any{
			"effective_to": effectiveTo,
			"is_active":    false,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindAssignmentByID(ctx context.Context, companyID, employeeID, id string, forUpdate bool) (*EmployeeSalaryComponent, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	q := db.Scopes(tenant.Scope(companyID)).Where("employee_id = ?", employeeID)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var a EmployeeSalaryComponent
	err := q.First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindLatestAssignment(ctx context.Context, companyID, employeeID, code string) (*EmployeeSalaryComponent, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var a EmployeeSalaryComponent
	err := db.Scopes(tenant.Scope(companyID)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND component_code = ?", employeeID, code).
		Order("effective_from DESC").
		First(&a).Error
	return &a, err
}

func (r *repository) FindOpenAssignments(ctx context.Context, companyID, employeeID string) ([]EmployeeSalaryComponent, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var out []EmployeeSalaryComponent
	err := db.Scopes(tenant.Scope(companyID)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND effective_to IS NULL", employeeID).
		Find(&out).Error
	return out, err
}

func (r *repository) FindAssignmentsEffectiveOn(ctx context.Context, companyID, employeeID string, asOf time.Time) ([]EmployeeSalaryComponent, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var out []EmployeeSalaryComponent
	err := db.Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("effective_from <= ?", asOf).
		Where("effective_to IS NULL OR effective_to > ?", asOf).
		Find(&out).Error
	return out, err
}

func (r *repository) FindAssignments(ctx context.Context, companyID, employeeID string) ([]EmployeeSalaryComponent, error) {
	db, cancel := r.session(ctx)
	defer cancel()

	var out []EmployeeSalaryComponent
	err := db.Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Order("component_code ASC, effective_from DESC").
		Find(&out).Error
	return out, err
}
