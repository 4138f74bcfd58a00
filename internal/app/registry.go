package app

import (
	"database/sql"

	"go-payroll/internal/employee"
	"go-payroll/internal/loan"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/middleware"
	"go-payroll/internal/payroll"
	"go-payroll/internal/rbac"
	"go-payroll/internal/rbac/infra"
	"go-payroll/internal/salarycomponent"
	"go-payroll/internal/shared/config"
	"go-payroll/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// services holds the engine's domain services. The api, worker and consumer
// processes build the same graph and use the parts they need.
type services struct {
	outbox     kafka.OutboxRepository
	employees  employee.Service
	components salarycomponent.Service
	loans      loan.Service
	payroll    payroll.Service
}

func buildServices(cfg config.Config, db *sql.DB, gormDB *gorm.DB, rdb *redis.Client, logger *zap.Logger) *services {
	timeout := cfg.Payroll.PersistenceTimeout

	// --- Repositories ---
	outboxRepo := kafka.NewOutboxRepository(db, timeout)
	employeeRepo := employee.NewRepository(gormDB, timeout)
	componentRepo := salarycomponent.NewRepository(gormDB, timeout)
	loanRepo := loan.NewRepository(gormDB, cfg.Loan.PersistenceTimeout)
	payrollRepo := payroll.NewRepository(gormDB, timeout)
	counterRepo := counter.NewRepository(gormDB)

	// --- Services ---
	employeeService := employee.NewService(employeeRepo, logger)
	componentService := salarycomponent.NewService(db, componentRepo, employeeService, logger)
	resolver := salarycomponent.NewResolver(componentRepo, logger)
	loanService := loan.NewService(db, loanRepo, counterRepo, outboxRepo, employeeService, cfg.Loan, logger)
	payrollService := payroll.NewService(
		db,
		payrollRepo,
		employeeService,
		resolver,
		loanService,
		outboxRepo,
		rdb,
		cfg.Payroll,
		logger,
	)

	return &services{
		outbox:     outboxRepo,
		employees:  employeeService,
		components: componentService,
		loans:      loanService,
		payroll:    payrollService,
	}
}

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	svc *services,
	gormDB *gorm.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) error {
	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbac.NewRepository(gormDB, cfg.Payroll.PersistenceTimeout), enforcer, logger)
	auth := middleware.AuthMiddleware(cfg.JWT.Secret)

	// --- Handlers ---
	componentHandler := salarycomponent.NewHandler(svc.components, logger)
	loanHandler := loan.NewHandler(svc.loans, logger)
	payrollHandler := payroll.NewHandler(svc.payroll, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		salarycomponent.RegisterRoutes(api, componentHandler, auth, rbacService)
		loan.RegisterRoutes(api, loanHandler, auth, rbacService)
		payroll.RegisterRoutes(api, payrollHandler, auth, rbacService, rdb, cfg.HTTP.IdempotencyTTL)
	}

	return nil
}
