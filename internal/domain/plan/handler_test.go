package plan

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(asStaff(3))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandler_CreateAndApprove(t *testing.T) {
	e := echo.New()
	h := NewHandler(newTestService())

	body := `{"user_id":1,"plan_type":"初回","plan_number":"P-1","start_date":"2025-04-01","end_date":"2026-03-31",
		"services":[{"service_type":"就労継続支援B型","provider":"ひまわり作業所","frequency":"週4回","hours":"6時間","purpose":"日中活動"}]}`
	c, rec := newContext(e, http.MethodPost, "/api/v1/plans", body)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"approval_status":"draft"`)
	assert.Contains(t, rec.Body.String(), `"approval_status_label":"作成中"`)

	c, rec = newContext(e, http.MethodPost, "/api/v1/plans/1/approve", `{"approval_status":"承認済み"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"approval_status":"approved"`)
	assert.Contains(t, rec.Body.String(), `"approval_date":"2025-06-15"`)
}

func TestHandler_Approve_InvalidStatus(t *testing.T) {
	e := echo.New()
	h := NewHandler(newTestService())
	c, _ := newContext(e, http.MethodPost, "/api/v1/plans/1/approve", `{"approval_status":"rejected"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := h.Approve(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestHandler_RegisterRoutes(t *testing.T) {
	e := echo.New()
	NewHandler(newTestService()).RegisterRoutes(e.Group("/api/v1"))

	routeSet := make(map[string]bool)
	for _, r := range e.Routes() {
		routeSet[r.Method+":"+r.Path] = true
	}
	for _, exp := range []string{
		"GET:/api/v1/plans",
		"POST:/api/v1/plans",
		"PUT:/api/v1/plans/:id",
		"PUT:/api/v1/plans/:id/approve",
		"POST:/api/v1/plans/:id/approve",
		"GET:/api/v1/users/:id/plans",
		"GET:/api/v1/plans/:id/evaluations",
		"POST:/api/v1/plans/:id/evaluations",
		"PUT:/api/v1/evaluations/:id",
		"DELETE:/api/v1/evaluations/:id",
	} {
		assert.True(t, routeSet[exp], "missing route %s", exp)
	}
}

func TestHandler_ApproveRoutes(t *testing.T) {
	svc := newTestService()
	e := echo.New()
	NewHandler(svc).RegisterRoutes(e.Group("/api/v1"))
	p, err := svc.Create(asStaff(3), newInput("P-1", "2025-04-01", "2026-03-31"))
	require.NoError(t, err)

	steps := []struct {
		method string
		status string
		want   string
	}{
		{http.MethodPut, "approved", `"approval_status":"approved"`},
		{http.MethodPost, "active", `"approval_status":"active"`},
	}
	for _, st := range steps {
		req := httptest.NewRequest(st.method, "/api/v1/plans/"+strconv.FormatInt(p.ID, 10)+"/approve",
			strings.NewReader(`{"approval_status":"`+st.status+`"}`))
		req = req.WithContext(asStaff(3))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "%s approve", st.method)
		assert.Contains(t, rec.Body.String(), st.want)
	}
}
