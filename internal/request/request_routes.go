package request

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	leaves := r.Group("/leave-requests")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.GET("", rbac.Authorize(rbacService, "leave", "read"), handler.GetAll)
		leaves.GET("/:id", rbac.Authorize(rbacService, "leave", "read"), handler.GetById)
		leaves.POST("", rbac.Authorize(rbacService, "leave", "create"), handler.Create)
		leaves.PUT("/:id", rbac.Authorize(rbacService, "leave", "update"), handler.Update)
		leaves.DELETE("/:id", rbac.Authorize(rbacService, "leave", "delete"), handler.Delete)

		decisions := leaves.Group("")
		if rdb != nil {
			decisions.Use(middleware.Idempotency(rdb))
		}
		decisions.POST("/:id/approve", rbac.Authorize(rbacService, "leave", "approve"), handler.Approve)
		decisions.POST("/:id/reject", rbac.Authorize(rbacService, "leave", "approve"), handler.Reject)
	}
}
