package security

import (
	"Trendspotter/internal/api/config"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSecretMissing  = errors.New("jwt secret is not configured")
	ErrTokenMalformed = errors.New("token 格式不正确")
)

// signer 当前进程使用的共享密钥与签发方
type signer struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

var current *signer

// InitJWT 账号体系由上游签发 Token，这里只需要共享密钥
func InitJWT(cfg config.JWTConfig) error {
	if cfg.Secret == "" {
		return ErrSecretMissing
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	current = &signer{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		parser: jwt.NewParser(opts...),
	}
	return nil
}

// GenerateToken 签发 HS256 Token，主要供测试与内部工具使用
func GenerateToken(userID uint64, roles []string) (string, error) {
	s := current
	if s == nil {
		return "", ErrSecretMissing
	}
	now := time.Now()
	claims := &UserClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(JWTExpirationTime)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("签名 Token 失败: %w", err)
	}
	return signed, nil
}

// ValidateToken 校验签名、过期时间与签发方
func ValidateToken(tokenString string) (*UserClaims, error) {
	s := current
	if s == nil {
		return nil, ErrSecretMissing
	}
	claims := &UserClaims{}
	_, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token 解析失败: %w", err)
	}
	return claims, nil
}

// ExtractSignature 黑名单以签名段为键
func ExtractSignature(tokenString string) (string, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[2] == "" {
		return "", ErrTokenMalformed
	}
	return parts[2], nil
}
