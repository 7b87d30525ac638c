package middleware

import (
	"Trendspotter/internal/api/config"
	"Trendspotter/internal/pkg/consts"
	"Trendspotter/internal/pkg/redis"
	"Trendspotter/internal/pkg/security"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

func setupAuth(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := security.InitJWT(config.JWTConfig{Secret: "middleware-secret"}); err != nil {
		t.Fatal(err)
	}
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{
		Addr:            mr.Addr(),
		DisableIdentity: true,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	})
	old := redis.Rdb
	redis.Rdb = client
	t.Cleanup(func() {
		redis.Rdb = old
		_ = client.Close()
	})
	return mr
}

func whoAmI(c *gin.Context) {
	c.String(http.StatusOK, strconv.FormatUint(c.GetUint64("user_id"), 10))
}

func call(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	mr := setupAuth(t)
	r := gin.New()
	r.GET("/me", AuthMiddleware(), whoAmI)

	token, err := security.GenerateToken(17, []string{consts.RoleUser})
	if err != nil {
		t.Fatal(err)
	}
	if w := call(r, token); w.Body.String() != "17" {
		t.Fatalf("valid token body = %s", w.Body.String())
	}

	if w := call(r, ""); !strings.Contains(w.Body.String(), `"Code":401`) {
		t.Errorf("missing token body = %s", w.Body.String())
	}
	if w := call(r, "not-a-jwt"); !strings.Contains(w.Body.String(), `"Code":401`) {
		t.Errorf("malformed token body = %s", w.Body.String())
	}

	sig, _ := security.ExtractSignature(token)
	if err = mr.Set(consts.TokenBlacklistKey+sig, "1"); err != nil {
		t.Fatal(err)
	}
	if w := call(r, token); !strings.Contains(w.Body.String(), `"Code":401`) {
		t.Errorf("revoked token body = %s", w.Body.String())
	}
}

func TestAuthOptionalMiddleware(t *testing.T) {
	setupAuth(t)
	r := gin.New()
	r.GET("/me", AuthOptionalMiddleware(), whoAmI)

	if w := call(r, ""); w.Body.String() != "0" {
		t.Errorf("guest body = %s", w.Body.String())
	}
	if w := call(r, "garbage"); w.Body.String() != "0" {
		t.Errorf("bad token body = %s", w.Body.String())
	}
	token, _ := security.GenerateToken(5, nil)
	if w := call(r, token); w.Body.String() != "5" {
		t.Errorf("user body = %s", w.Body.String())
	}
}

func TestTraceMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", TraceMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "gateway-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Trace-ID") != "gateway-1" {
		t.Errorf("trace id = %s", w.Header().Get("X-Trace-ID"))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", strings.Repeat("x", 100))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Trace-ID"); len(got) != 36 {
		t.Errorf("oversized trace id should be replaced, got %s", got)
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Fatalf("preflight code=%d headers=%v", w.Code, w.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin must not be allowed")
	}
}
