package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func routeContext(method, route string) echo.Context {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(method, route, nil), httptest.NewRecorder())
	c.SetPath(route)
	return c
}

func TestAuthSkipper(t *testing.T) {
	tests := []struct {
		method, route string
		skip          bool
	}{
		{http.MethodGet, "/health", true},
		{http.MethodGet, "/health/db", true},
		{http.MethodPost, "/api/v1/auth/login", true},
		{http.MethodPost, "/api/v1/auth/logout", true},
		{http.MethodGet, "/api/v1/auth/me", false},
		{http.MethodGet, "/api/v1/users", false},
		{http.MethodGet, "/api/v1/plans/:id/pdf", false},
		{http.MethodOptions, "/api/v1/users", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.skip, AuthSkipper(routeContext(tt.method, tt.route)), "%s %s", tt.method, tt.route)
	}
}

func TestNewSkipper_CustomRoutes(t *testing.T) {
	skip := NewSkipper("/metrics")
	assert.True(t, skip(routeContext(http.MethodGet, "/metrics")))
	assert.False(t, skip(routeContext(http.MethodGet, "/health")))
}
