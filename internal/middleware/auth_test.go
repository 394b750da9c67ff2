package middleware

import (
	"net/http"
	"net/http/httptest"
	"quiz_backend/internal/config"
	"quiz_backend/internal/model"
	"quiz_backend/internal/util"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(cfg), func(c *gin.Context) {
		util.Success(c, util.GetUserFromContext(c).UserID)
	})
	r.GET("/admin", AuthMiddleware(cfg), RoleMiddleware(model.Admin), func(c *gin.Context) {
		util.Success(c, nil)
	})
	return r
}

func token(t *testing.T, secret string, id uint, role model.UserRole) string {
	t.Helper()
	tok, err := util.GenerateJWT(&model.User{BaseModel: model.BaseModel{ID: id}, Role: role}, secret, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

func TestAuthAndRoleMiddleware(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "secret"}}
	r := newRouter(cfg)

	userTok := token(t, "secret", 2, model.RoleUser)
	adminTok := token(t, "secret", 1, model.Admin)
	forged := token(t, "other", 1, model.Admin)

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no token", "/me", "", http.StatusUnauthorized},
		{"forged token", "/me", "Bearer " + forged, http.StatusUnauthorized},
		{"user token", "/me", "Bearer " + userTok, http.StatusOK},
		{"query token", "/me?token=" + userTok, "", http.StatusOK},
		{"user on admin route", "/admin", "Bearer " + userTok, http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer " + adminTok, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
