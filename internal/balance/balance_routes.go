package balance

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("", rbac.Authorize(rbacService, "balance", "read"), handler.GetMine)
		balances.GET("/employee/:employeeID", rbac.Authorize(rbacService, "balance", "allocate"), handler.GetByEmployee)
		balances.POST("", rbac.Authorize(rbacService, "balance", "allocate"), handler.Allocate)
	}
}
