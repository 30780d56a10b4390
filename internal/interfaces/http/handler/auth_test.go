package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shipkia/connector/internal/infrastructure/auth"
	"github.com/shipkia/connector/internal/interfaces/http/middleware"
)

func testClaims() *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
		Username:    "admin",
		Permissions: []string{auth.PermissionManageOptions},
	}
}

func setupAuthRouter(revoker *MockTokenRevoker, claims *auth.Claims) *gin.Engine {
	h := NewAuthHandler(revoker)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.JWTClaimsKey, claims)
		}
		c.Next()
	})
	r.GET("/auth/me", h.Me)
	r.POST("/auth/logout", h.Logout)
	return r
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("describes the session", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupAuthRouter(new(MockTokenRevoker), testClaims()).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

		require.Equal(t, http.StatusOK, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "1", data["admin_id"])
		assert.Equal(t, "admin", data["username"])
		assert.Equal(t, "2030-01-01T00:00:00Z", data["expires_at"])
	})

	t.Run("no claims", func(t *testing.T) {
		w := httptest.NewRecorder()
		setupAuthRouter(new(MockTokenRevoker), nil).
			ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes the token", func(t *testing.T) {
		claims := testClaims()
		revoker := new(MockTokenRevoker)
		revoker.On("Revoke", mock.Anything, claims).Return(nil)

		w := httptest.NewRecorder()
		setupAuthRouter(revoker, claims).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		revoker.AssertExpectations(t)
	})

	t.Run("revocation failure", func(t *testing.T) {
		revoker := new(MockTokenRevoker)
		revoker.On("Revoke", mock.Anything, mock.Anything).Return(assert.AnError)

		w := httptest.NewRecorder()
		setupAuthRouter(revoker, testClaims()).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("no claims", func(t *testing.T) {
		revoker := new(MockTokenRevoker)

		w := httptest.NewRecorder()
		setupAuthRouter(revoker, nil).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		revoker.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
	})
}
