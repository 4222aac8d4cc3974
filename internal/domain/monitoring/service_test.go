package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/auth"
	"github.com/soudan/casebook/internal/platform/dates"
)

type mockRepo struct {
	items  map[int64]*Monitoring
	nextID int64
}

func (m *mockRepo) Create(_ context.Context, mon *Monitoring) error {
	m.nextID++
	mon.ID = m.nextID
	cp := *mon
	m.items[mon.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Monitoring, error) {
	mon, ok := m.items[id]
	if !ok || mon.IsDeleted {
		return nil, apperr.NotFound("monitoring", id)
	}
	cp := *mon
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, mon *Monitoring) error {
	cp := *mon
	m.items[mon.ID] = &cp
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, id int64) error {
	mon, ok := m.items[id]
	if !ok {
		return apperr.NotFound("monitoring", id)
	}
	mon.IsDeleted = true
	return nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Monitoring, int, error) {
	var result []*Monitoring
	for _, mon := range m.items {
		if mon.IsDeleted || (f.PlanID != nil && mon.PlanID != *f.PlanID) || (f.UserID != nil && mon.UserID != *f.UserID) {
			continue
		}
		cp := *mon
		result = append(result, &cp)
	}
	return result, len(result), nil
}

// stubPlans maps plan id to owning user.
type stubPlans map[int64]int64

func (s stubPlans) OwnerOf(_ context.Context, planID int64) (int64, error) {
	owner, ok := s[planID]
	if !ok {
		return 0, apperr.NotFound("plan", planID)
	}
	return owner, nil
}

type stubUsers map[int64]bool

func (s stubUsers) Exists(_ context.Context, id int64) error {
	if !s[id] {
		return apperr.NotFound("user", id)
	}
	return nil
}

func newTestService() *Service {
	clock := func() time.Time { return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC) }
	return NewService(&mockRepo{items: make(map[int64]*Monitoring)}, stubPlans{7: 1, 8: 2}, stubUsers{1: true, 2: true}, clock)
}

func asStaff(id int64) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{ID: id, Role: auth.RoleStaff, Active: true})
}

func newInput(planID int64, date, next string) Input {
	typ := "定期"
	in := Input{PlanID: &planID, MonitoringType: &typ}
	if date != "" {
		d := dates.MustParse(date)
		in.MonitoringDate = &d
	}
	if next != "" {
		n := dates.MustParse(next)
		in.NextMonitoringDate = &n
	}
	return in
}

func TestService_Create_DefaultsUserFromPlan(t *testing.T) {
	svc := newTestService()
	m, err := svc.Create(asStaff(3), newInput(7, "", "2025-09-15"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.UserID)
	assert.Equal(t, int64(3), m.StaffID)
	assert.Equal(t, dates.New(2025, 6, 15), m.MonitoringDate)
	assert.False(t, m.IsOverdue)
}

func TestService_Create_Rejects(t *testing.T) {
	svc := newTestService()
	ctx := asStaff(3)

	in := newInput(7, "2025-06-01", "")
	other := int64(2)
	in.UserID = &other
	_, err := svc.Create(ctx, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "user must own the plan")

	_, err = svc.Create(ctx, newInput(99, "2025-06-01", ""))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Create(ctx, newInput(7, "2025-06-01", "2025-06-01"))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "next date must be strictly later")

	in = newInput(7, "2025-06-01", "")
	bad := "とても満足"
	in.Satisfaction = &bad
	_, err = svc.Create(ctx, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestService_IsOverdue(t *testing.T) {
	svc := newTestService()
	ctx := asStaff(3)
	overdue, err := svc.Create(ctx, newInput(7, "2025-03-01", "2025-06-14"))
	require.NoError(t, err)
	assert.True(t, overdue.IsOverdue)

	dueToday, err := svc.Create(ctx, newInput(7, "2025-03-01", "2025-06-15"))
	require.NoError(t, err)
	assert.False(t, dueToday.IsOverdue)

	noNext, err := svc.Create(ctx, newInput(7, "2025-03-01", ""))
	require.NoError(t, err)
	assert.False(t, noNext.IsOverdue)
}

func TestService_Update_MovePlanRechecksOwner(t *testing.T) {
	svc := newTestService()
	ctx := asStaff(3)
	m, err := svc.Create(ctx, newInput(7, "2025-06-01", ""))
	require.NoError(t, err)

	plan := int64(8)
	_, err = svc.Update(ctx, m.ID, Input{PlanID: &plan})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	note := "通所が安定している"
	updated, err := svc.Update(ctx, m.ID, Input{ServiceUsageStatus: &note})
	require.NoError(t, err)
	assert.Equal(t, note, *updated.ServiceUsageStatus)
}

func TestService_NestedLists(t *testing.T) {
	svc := newTestService()
	ctx := asStaff(3)
	_, err := svc.Create(ctx, newInput(7, "2025-06-01", ""))
	require.NoError(t, err)

	items, total, err := svc.ListForPlan(ctx, 7, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, items, 1)

	_, _, err = svc.ListForPlan(ctx, 99, 100, 0)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, _, err = svc.ListForUser(ctx, 5, 100, 0)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, _, err = svc.List(ctx, ListFilter{MonitoringType: "毎月"}, 100, 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestHandler_RegisterRoutes(t *testing.T) {
	e := echo.New()
	NewHandler(newTestService()).RegisterRoutes(e.Group("/api/v1"))

	routeSet := make(map[string]bool)
	for _, r := range e.Routes() {
		routeSet[r.Method+":"+r.Path] = true
	}
	for _, exp := range []string{
		"GET:/api/v1/monitorings",
		"POST:/api/v1/monitorings",
		"GET:/api/v1/plans/:id/monitorings",
		"GET:/api/v1/users/:id/monitorings",
	} {
		assert.True(t, routeSet[exp], "missing route %s", exp)
	}
}

func TestHandler_Get_BadID(t *testing.T) {
	e := echo.New()
	h := NewHandler(newTestService())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/monitorings/abc", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
