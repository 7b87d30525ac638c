package middleware

import (
	"Trendspotter/internal/pkg/consts"
	"Trendspotter/internal/pkg/logger"
	"Trendspotter/internal/pkg/redis"
	"Trendspotter/internal/pkg/response"
	"Trendspotter/internal/pkg/security"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 校验 JWT，已注销的 Token 由黑名单拦截
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Token 缺失或格式错误")
			return
		}

		signature, err := security.ExtractSignature(token)
		if err != nil {
			abortUnauthorized(c, "Token 缺失或格式错误")
			return
		}

		revoked, err := redis.GetValue(c.Request.Context(), consts.TokenBlacklistKey+signature)
		if err != nil {
			response.Fail(c, response.InternalServerError, "未知错误")
			c.Abort()
			return
		}
		if revoked != "" {
			abortUnauthorized(c, "Token 无效或已过期")
			return
		}

		claims, err := security.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "Token 无效或已过期")
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func setIdentity(c *gin.Context, claims *security.UserClaims) {
	c.Set(logger.UserIDKey, claims.UserID)
	c.Set("roles", claims.Roles)
	ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, claims.UserID)
	c.Request = c.Request.WithContext(ctx)
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Fail(c, response.Unauthorized, msg)
	c.Abort()
}
