package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morpheus-mall/mall-backend/internal/auth"
)

type stubAuth struct {
	auth.Service
	users map[string]auth.User
}

func (s stubAuth) ParseAccessToken(token string) (*auth.Claims, error) {
	u, ok := s.users[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: u.ID, RoleName: u.Role.RoleName}, nil
}

func (s stubAuth) GetUserByID(_ context.Context, id uint) (auth.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return auth.User{}, errors.New("missing")
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := stubAuth{users: map[string]auth.User{
		"admin-token": {ID: 1, Status: auth.StatusActive, Role: auth.UserRole{RoleName: RoleAdmin}},
		"store-token": {ID: 2, Status: auth.StatusActive, Role: auth.UserRole{RoleName: RoleStoreAdmin}},
		"buyer-token": {ID: 3, Status: auth.StatusActive, Role: auth.UserRole{RoleName: RoleCustomer}},
		"gone-token":  {ID: 4, Status: auth.StatusInactive, Role: auth.UserRole{RoleName: RoleAdmin}},
	}}

	r := gin.New()
	r.Use(RequestLogger(), AuditMiddleware())
	api := r.Group("/", AuthMiddleware(svc))
	api.GET("/me", func(c *gin.Context) {
		ac, ok := GetAccessContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": ac.RoleName, "write": ac.CanWrite()})
	})
	api.GET("/admin", RBACMiddleware(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.POST("/write", RequireWriteAccess(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad token", "forged", http.StatusUnauthorized},
		{"inactive user", "gone-token", http.StatusUnauthorized},
		{"valid", "store-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/me", tt.token)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	t.Run("non bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRBACAndWriteAccess(t *testing.T) {
	r := newRouter()

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/admin", "admin-token").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin", "store-token").Code)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/write", "store-token").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/write", "buyer-token").Code)
}

func TestRequestLoggerEchoesID(t *testing.T) {
	r := newRouter()

	w := do(r, http.MethodGet, "/me", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-Ip": "198.51.100.2"}, "198.51.100.2"},
		{"garbage header falls back", map[string]string{"X-Forwarded-For": "nope"}, "192.0.2.1"},
		{"remote addr", nil, "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetIPFromContext(c))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimiter(2, nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(r, http.MethodGet, "/", "").Code)
	}
	require.Len(t, codes, 3)
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
