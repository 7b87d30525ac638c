package security

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	JWTExpirationTime = time.Hour * 24
)

// UserClaims 账号服务签发的 Token 载荷
type UserClaims struct {
	UserID uint64   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasAnyRole have 中至少包含一个 want
func HasAnyRole(have []string, want ...string) bool {
	return slices.ContainsFunc(want, func(r string) bool {
		return slices.Contains(have, r)
	})
}
