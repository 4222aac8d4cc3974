package staff

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo, *Service) {
	svc, _, _ := newTestService()
	return NewHandler(svc, false), echo.New(), svc
}

func TestHandler_Login_SetsCookie(t *testing.T) {
	h, e, svc := newTestHandler()
	mustCreate(t, svc, "sato", "")

	body := `{"username":"sato","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 1800, cookies[0].MaxAge)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	h, e, _ := newTestHandler()
	body := `{"username":"ghost","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Login(c)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestHandler_Logout_ClearsCookie(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Logout(c))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestHandler_Me(t *testing.T) {
	h, e, svc := newTestHandler()
	st := mustCreate(t, svc, "sato", "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(asStaff(st.ID, auth.RoleStaff))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Me(c))
	var got Staff
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "sato", got.Username)
}

func TestHandler_List_FilterActive(t *testing.T) {
	h, e, svc := newTestHandler()
	mustCreate(t, svc, "a", "")
	mustCreate(t, svc, "b", auth.RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/staffs?role=admin&is_active=true", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.List(c))
	var resp struct {
		Data  []Staff `json:"data"`
		Total int     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "b", resp.Data[0].Username)
}

func TestHandler_List_InvalidBool(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/staffs?is_active=maybe", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.List(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestHandler_Delete(t *testing.T) {
	h, e, svc := newTestHandler()
	admin := mustCreate(t, svc, "admin", auth.RoleAdmin)
	st := mustCreate(t, svc, "sato", "")

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req = req.WithContext(asStaff(admin.ID, auth.RoleAdmin))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(st.ID, 10))

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_Get_InvalidID(t *testing.T) {
	h, e, _ := newTestHandler()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestHandler_RegisterRoutes(t *testing.T) {
	h, e, _ := newTestHandler()
	api := e.Group("/api/v1")
	h.RegisterRoutes(api)

	routes := e.Routes()
	expected := []string{
		"POST:/api/v1/auth/login",
		"POST:/api/v1/auth/logout",
		"GET:/api/v1/auth/me",
		"GET:/api/v1/staffs",
		"GET:/api/v1/staffs/:id",
		"POST:/api/v1/staffs",
		"PUT:/api/v1/staffs/:id",
		"DELETE:/api/v1/staffs/:id",
		"POST:/api/v1/staffs/:id/change-password",
	}
	routeSet := make(map[string]bool)
	for _, r := range routes {
		routeSet[r.Method+":"+r.Path] = true
	}
	for _, exp := range expected {
		assert.True(t, routeSet[exp], "missing route %s", exp)
	}
}
