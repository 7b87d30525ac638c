package security

import (
	"Trendspotter/internal/api/config"
	"errors"
	"strings"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	if err := InitJWT(config.JWTConfig{Secret: "test-secret", Issuer: "Trendspotter"}); err != nil {
		t.Fatalf("init: %v", err)
	}

	token, err := GenerateToken(42, []string{"USER", "AUDIT"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 || len(claims.Roles) != 2 || claims.Issuer != "Trendspotter" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	sig, err := ExtractSignature(token)
	if err != nil || sig == "" || !strings.HasSuffix(token, sig) {
		t.Errorf("signature = %q, err=%v", sig, err)
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	_ = InitJWT(config.JWTConfig{Secret: "one"})
	token, err := GenerateToken(1, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_ = InitJWT(config.JWTConfig{Secret: "two"})
	if _, err = ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestInitJWTRequiresSecret(t *testing.T) {
	if err := InitJWT(config.JWTConfig{}); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}
	if _, err := ExtractSignature("a.b"); err == nil {
		t.Error("malformed token should fail")
	}
}

func TestHasAnyRole(t *testing.T) {
	if !HasAnyRole([]string{"USER", "AUDIT"}, "AUDIT", "ADMIN") {
		t.Error("AUDIT should match")
	}
	if HasAnyRole([]string{"USER"}, "AUDIT", "ADMIN") || HasAnyRole(nil, "ADMIN") || HasAnyRole([]string{"ADMIN"}) {
		t.Error("unexpected match")
	}
}
