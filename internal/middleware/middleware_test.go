package middleware

import (
	"net/http"
	"net/http/httptest"
	"raid_checker_backend/internal/config"
	"raid_checker_backend/internal/model"
	"raid_checker_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testSecret = "middleware-test-secret-0123456789abcdef"

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	r := gin.New()
	r.Use(RequestID())
	api := r.Group("/api", AuthMiddleware(cfg))
	api.GET("/accounts/:accountId/summary", AccountScope("accountId"), func(c *gin.Context) {
		util.Success(c, gin.H{"account": util.GetAccountFromContext(c).AccountID})
	})
	api.GET("/admin/stats", RoleMiddleware(model.Master), func(c *gin.Context) {
		util.Success(c, nil)
	})
	return r
}

func token(t *testing.T, id uint, role model.AccountRole) string {
	t.Helper()
	account := &model.Account{Username: "user", Role: role}
	account.ID = id
	tok, err := util.GenerateJWT(account, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}
	return "Bearer " + tok
}

func TestAuthAndScope(t *testing.T) {
	r := testRouter()
	tests := []struct {
		name string
		path string
		auth string
		want int
	}{
		{"no token", "/api/accounts/1/summary", "", http.StatusUnauthorized},
		{"bad token", "/api/accounts/1/summary", "Bearer nope", http.StatusUnauthorized},
		{"own account", "/api/accounts/1/summary", token(t, 1, model.Member), http.StatusOK},
		{"other account", "/api/accounts/2/summary", token(t, 1, model.Member), http.StatusForbidden},
		{"master sees any account", "/api/accounts/2/summary", token(t, 1, model.Master), http.StatusOK},
		{"bad account id", "/api/accounts/x/summary", token(t, 1, model.Member), http.StatusBadRequest},
		{"member on admin route", "/api/admin/stats", token(t, 1, model.Member), http.StatusForbidden},
		{"master on admin route", "/api/admin/stats", token(t, 1, model.Master), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.Header.Set(util.RequestIDHeader, "fixed-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(util.RequestIDHeader); got != "fixed-id" {
		t.Errorf("echoed request id = %q, want fixed-id", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	if got := w.Header().Get(util.RequestIDHeader); len(got) != 36 {
		t.Errorf("generated request id = %q, want a uuid", got)
	}
}
