package rbac

import (
	"net/http"

	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RolesFromContext derives the actor's role set from the flag claims the auth
// middleware put in the context. Everyone is at least an employee.
func RolesFromContext(c *gin.Context) []string {
	roles := []string{RoleEmployee}
	if c.GetBool("is_admin") {
		roles = append(roles, RoleAdmin)
	}
	if c.GetBool("is_manager") {
		roles = append(roles, RoleManager)
	}
	if c.GetBool("is_hr") {
		roles = append(roles, RoleHR)
	}
	return roles
}

func Authorize(service Service, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("department") == "" && c.GetUint("user_id") == 0 {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
			c.Abort()
			return
		}

		allowed, err := service.Enforce(RolesFromContext(c), resource, action)
		if err != nil {
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error(), nil)
			c.Abort()
			return
		}

		if !allowed {
			response.Error(c, http.StatusForbidden, "FORBIDDEN",
				"You do not have permission to access this resource",
				resource+":"+action,
			)
			c.Abort()
			return
		}
		c.Next()
	}
}
