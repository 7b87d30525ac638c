package middleware

import (
	"Trendspotter/internal/pkg/consts"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCheckRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		roles  []string
		passed bool
	}{
		{"no roles", nil, false},
		{"other role", []string{"USER"}, false},
		{"matching role", []string{"USER", "AUDIT"}, true},
		{"admin", []string{"ADMIN"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			reached := false
			r.GET("/review", func(c *gin.Context) {
				if tc.roles != nil {
					c.Set("roles", tc.roles)
				}
				c.Next()
			}, CheckRoles(consts.RoleAudit, consts.RoleAdmin), func(c *gin.Context) {
				reached = true
				c.Status(http.StatusNoContent)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/review", nil))

			if reached != tc.passed {
				t.Fatalf("reached = %v, want %v", reached, tc.passed)
			}
			if !tc.passed && !strings.Contains(w.Body.String(), `"Code":403`) {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}
