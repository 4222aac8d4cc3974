package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudan/casebook/internal/platform/apperr"
)

type stubLookup map[int64]*Principal

func (s stubLookup) LookupPrincipal(ctx context.Context, id int64) (*Principal, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

func newTestMiddleware(store RevocationStore) (*Sessions, echo.MiddlewareFunc) {
	sessions := NewSessions(testSecret, 30*time.Minute, "casebook")
	lookup := stubLookup{
		1: {ID: 1, Username: "admin", Role: RoleAdmin, Active: true},
		2: {ID: 2, Username: "retired", Role: RoleStaff, Active: false},
	}
	return sessions, Middleware(MiddlewareConfig{
		Sessions:    sessions,
		Revocations: store,
		Lookup:      lookup,
		Skipper:     AuthSkipper,
		Logger:      zerolog.Nop(),
	})
}

func serve(mw echo.MiddlewareFunc, req *http.Request, path string) (echo.Context, error) {
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(path)
	var seen echo.Context
	err := mw(func(c echo.Context) error {
		seen = c
		return nil
	})(c)
	return seen, err
}

func TestMiddleware_CookieSession(t *testing.T) {
	sessions, mw := newTestMiddleware(nil)
	token, _, err := sessions.Issue(1, "admin", RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	c, err := serve(mw, req, "/api/v1/users")
	require.NoError(t, err)
	ctx := c.Request().Context()
	assert.Equal(t, int64(1), StaffIDFromContext(ctx))
	assert.True(t, IsAdmin(ctx))
	assert.NotNil(t, ClaimsFromContext(ctx))
}

func TestMiddleware_BearerHeader(t *testing.T) {
	sessions, mw := newTestMiddleware(nil)
	token, _, _ := sessions.Issue(1, "admin", RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	_, err := serve(mw, req, "/api/v1/users")
	assert.NoError(t, err)
}

func TestMiddleware_Unauthenticated(t *testing.T) {
	sessions, mw := newTestMiddleware(nil)
	inactive, _, _ := sessions.Issue(2, "retired", RoleStaff)
	unknown, _, _ := sessions.Issue(99, "ghost", RoleStaff)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"inactive staff", inactive},
		{"unknown staff", unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.token})
			}
			_, err := serve(mw, req, "/api/v1/users")
			assert.True(t, apperr.Is(err, apperr.KindUnauthenticated), "got %v", err)
		})
	}
}

func TestMiddleware_RevokedToken(t *testing.T) {
	store := NewMemoryRevocationStore()
	defer store.Close()
	sessions, mw := newTestMiddleware(store)

	token, claims, _ := sessions.Issue(1, "admin", RoleAdmin)
	require.NoError(t, store.Revoke(context.Background(), claims.ID, claims.ExpiresAt.Time))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	_, err := serve(mw, req, "/api/v1/users")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestMiddleware_SkipsPublicPaths(t *testing.T) {
	_, mw := newTestMiddleware(nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	_, err := serve(mw, req, "/health")
	assert.NoError(t, err)
}
