package salarycomponent

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
	components := r.Group("/salary-components")
	components.Use(auth)
	{
		components.GET("", middleware.RBACAuthorize(rbacService, "salary_component", "read"), handler.GetAll)
		components.GET("/:id", middleware.RBACAuthorize(rbacService, "salary_component", "read"), handler.GetByID)
		components.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "salary_component", "manage"),
			handler.Create,
		)
		components.POST("/:id/supersede",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "salary_component", "manage"),
			handler.Supersede,
		)
	}

	assignments := r.Group("/employees/:employeeId/salary-components")
	assignments.Use(auth)
	{
		assignments.GET("", middleware.RBACAuthorize(rbacService, "salary_component", "read"), handler.ListAssignments)
		assignments.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "salary_component", "assign"),
			handler.Assign,
		)
		assignments.PATCH("/:assignmentId/end",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "salary_component", "assign"),
			handler.EndAssignment,
		)
	}
}
