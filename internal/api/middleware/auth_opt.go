package middleware

import (
	"Trendspotter/internal/pkg/logger"
	"Trendspotter/internal/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 游客可访问的接口，解析失败时 user_id 为 0
func AuthOptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(logger.UserIDKey, uint64(0))
		if token, ok := bearerToken(c); ok {
			if claims, err := security.ValidateToken(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}
