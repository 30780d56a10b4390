package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipkia/connector/internal/interfaces/http/handler"
)

// Services are nil: any request that reaches a guarded handler would panic.
func testAPI(t *testing.T) *gin.Engine {
	t.Helper()
	engine := gin.New()
	h := Handlers{
		System:     handler.NewSystemHandler("shipkia-connector", "1.0.0"),
		Auth:       handler.NewAuthHandler(nil),
		Connection: handler.NewConnectionHandler(nil),
		Settings:   handler.NewSettingsHandler(nil),
		Tracking:   handler.NewTrackingHandler(nil),
	}
	g := Guards{
		Admin:  func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) },
		Push:   func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) },
		Public: func(c *gin.Context) { c.AbortWithStatus(http.StatusTooManyRequests) },
	}
	NewAPI(NewRouter(engine), h, g).Setup()
	return engine
}

func TestNewAPIRoutes(t *testing.T) {
	engine := testAPI(t)

	registered := make(map[string]bool)
	for _, r := range engine.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	expected := []string{
		"GET /api/v1/system/ping",
		"GET /api/v1/system/info",
		"GET /api/v1/auth/me",
		"POST /api/v1/auth/logout",
		"GET /api/v1/connection/status",
		"POST /api/v1/connection/connect",
		"POST /api/v1/connection/disconnect",
		"POST /api/v1/connection/sync",
		"POST /api/v1/connection/check",
		"POST /api/v1/connection/activate",
		"GET /api/v1/settings",
		"PUT /api/v1/settings",
		"GET /api/v1/orders/tracking",
		"GET /api/v1/orders/:id/tracking",
		"GET /api/v1/orders/:id/tracking/column",
		"GET /api/v1/orders/:id/tracking/customer",
		"PUT /api/v1/orders/:id/tracking",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
	assert.Len(t, registered, len(expected))
}

func TestNewAPIGuards(t *testing.T) {
	engine := testAPI(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/system/ping", http.StatusOK},
		{http.MethodGet, "/api/v1/auth/me", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/connection/status", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/connection/connect", http.StatusUnauthorized},
		{http.MethodPut, "/api/v1/settings", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/orders/tracking", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/orders/12/tracking", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/orders/12/tracking/column", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/orders/12/tracking/customer", http.StatusTooManyRequests},
		{http.MethodPut, "/api/v1/orders/12/tracking", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestNewAPIRouteDescriptions(t *testing.T) {
	h := Handlers{
		System:     handler.NewSystemHandler("shipkia-connector", "1.0.0"),
		Auth:       handler.NewAuthHandler(nil),
		Connection: handler.NewConnectionHandler(nil),
		Settings:   handler.NewSettingsHandler(nil),
		Tracking:   handler.NewTrackingHandler(nil),
	}
	routes := NewAPI(NewRouter(gin.New()), h, Guards{}).Routes()

	require.Len(t, routes, 17)
	for _, r := range routes {
		assert.NotEmpty(t, r.Description, "%s %s", r.Method, r.Path)
	}
}

func TestGuardNil(t *testing.T) {
	engine := gin.New()
	engine.GET("/", guard(nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
