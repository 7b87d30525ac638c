package middleware

import (
	"Trendspotter/internal/pkg/response"
	"Trendspotter/internal/pkg/security"

	"github.com/gin-gonic/gin"
)

// CheckRoles 审核与对账接口，至少拥有其中一个角色
func CheckRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !security.HasAnyRole(c.GetStringSlice("roles"), requiredRoles...) {
			response.Fail(c, response.Forbidden, "权限不足：无权访问该资源")
			c.Abort()
			return
		}
		c.Next()
	}
}
