package loan

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	auth gin.HandlerFunc,
	rbacService middleware.RBACService,
) {
	loans := r.Group("/loans")
	loans.Use(auth)
	{
		loans.GET("", middleware.RBACAuthorize(rbacService, "loan", "read"), handler.GetAll)
		loans.GET("/:id", middleware.RBACAuthorize(rbacService, "loan", "read"), handler.GetByID)

		loans.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "loan", "apply"),
			handler.Apply,
		)
		loans.POST("/advances",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "loan", "apply"),
			handler.ApplyAdvance,
		)

		loans.PATCH("/:id/approve", middleware.RBACAuthorize(rbacService, "loan", "approve"), handler.Approve)
		loans.PATCH("/:id/reject", middleware.RBACAuthorize(rbacService, "loan", "approve"), handler.Reject)
		loans.PATCH("/:id/cancel", middleware.RBACAuthorize(rbacService, "loan", "approve"), handler.Cancel)
		loans.PATCH("/:id/disburse", middleware.RBACAuthorize(rbacService, "loan", "disburse"), handler.Disburse)

		loans.POST("/:id/repayments", middleware.RBACAuthorize(rbacService, "loan", "repay"), handler.PostRepayment)
		loans.POST("/:id/missed", middleware.RBACAuthorize(rbacService, "loan", "repay"), handler.MarkMissed)
	}
}
