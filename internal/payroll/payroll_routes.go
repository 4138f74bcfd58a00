package payroll

import (
	"time"

	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes mounts pay period and salary endpoints. Process and
// bulk-payment honour Idempotency-Key only when rdb is non-nil.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	idempotencyTTL time.Duration,
) {
	idempotent := func(h ...gin.HandlerFunc) []gin.HandlerFunc {
		if rdb == nil {
			return h
		}
		return append([]gin.HandlerFunc{middleware.Idempotency(rdb, idempotencyTTL)}, h...)
	}

	periods := r.Group("/pay-periods")
	periods.Use(auth)
	{
		periods.GET("", middleware.RBACAuthorize(rbacService, "pay_period", "read"), handler.GetPeriods)
		periods.GET("/:id", middleware.RBACAuthorize(rbacService, "pay_period", "read"), handler.GetPeriod)
		periods.POST("", middleware.RBACAuthorize(rbacService, "pay_period", "create"), handler.CreatePeriod)
		periods.POST("/:id/process", idempotent(
			middleware.RBACAuthorize(rbacService, "pay_period", "process"),
			handler.Process,
		)...)
		periods.POST("/:id/lock", middleware.RBACAuthorize(rbacService, "pay_period", "process"), handler.LockPeriod)
		periods.POST("/:id/close", middleware.RBACAuthorize(rbacService, "pay_period", "process"), handler.ClosePeriod)
	}

	salaries := r.Group("/salaries")
	salaries.Use(auth)
	{
		salaries.GET("", middleware.RBACAuthorize(rbacService, "salary", "read"), handler.GetSalaries)
		salaries.GET("/:id", middleware.RBACAuthorize(rbacService, "salary", "read"), handler.GetSalary)
		salaries.PATCH("/:id/approve", middleware.RBACAuthorize(rbacService, "salary", "approve"), handler.Approve)
		salaries.PATCH("/:id/cancel", middleware.RBACAuthorize(rbacService, "salary", "approve"), handler.Cancel)
		salaries.PATCH("/:id/pay", middleware.RBACAuthorize(rbacService, "salary", "pay"), handler.Pay)
		salaries.POST("/bulk-payment", idempotent(
			middleware.RBACAuthorize(rbacService, "salary", "pay"),
			handler.BulkPay,
		)...)
	}
}
