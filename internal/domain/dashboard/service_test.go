package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/dates"
)

// fakeRepo filters in memory the way the SQL does.
type fakeRepo struct {
	births        []dates.Date
	statuses      map[string]int
	consultations map[string]int
	monthly       map[string]int
	plans         []PlanAlert
	monitorings   []MonitoringAlert
	notebooks     []NotebookAlert
	failUsers     bool

	dueFrom, dueTo         dates.Date
	monthlyFrom, monthlyTo dates.Date
}

func (f *fakeRepo) CountUsers(context.Context) (int, error) {
	if f.failUsers {
		return 0, errors.New("connection refused")
	}
	return len(f.births), nil
}

func (f *fakeRepo) BirthDates(context.Context) ([]dates.Date, error) { return f.births, nil }

func (f *fakeRepo) PlanStatusCounts(context.Context) (map[string]int, error) { return f.statuses, nil }

func (f *fakeRepo) CountMonitoringsDue(_ context.Context, from, to dates.Date) (int, error) {
	f.dueFrom, f.dueTo = from, to
	return 2, nil
}

func (f *fakeRepo) ConsultationTypeCounts(context.Context) (map[string]int, error) {
	return f.consultations, nil
}

func (f *fakeRepo) MonthlyConsultations(_ context.Context, from, to dates.Date) (map[string]int, error) {
	f.monthlyFrom, f.monthlyTo = from, to
	return f.monthly, nil
}

func (f *fakeRepo) ExpiringPlans(_ context.Context, from, to dates.Date) ([]PlanAlert, error) {
	var out []PlanAlert
	for _, p := range f.plans {
		if !p.EndDate.Before(from) && !p.EndDate.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) OverdueMonitorings(_ context.Context, today dates.Date) ([]MonitoringAlert, error) {
	var out []MonitoringAlert
	for _, m := range f.monitorings {
		if m.NextMonitoringDate.Before(today) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) ExpiringNotebooks(_ context.Context, from, to dates.Date) ([]NotebookAlert, error) {
	var out []NotebookAlert
	for _, n := range f.notebooks {
		if !n.RenewalDate.Before(from) && !n.RenewalDate.After(to) {
			out = append(out, n)
		}
	}
	return out, nil
}

var fixedClock = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }

func TestService_Stats(t *testing.T) {
	repo := &fakeRepo{
		births: []dates.Date{
			dates.MustParse("2010-01-01"), // 15
			dates.MustParse("1980-05-15"), // 45
			dates.MustParse("1960-06-15"), // 65 today
			dates.MustParse("1960-06-16"), // 64
			{},
		},
		statuses:      map[string]int{"draft": 3, "active": 5},
		consultations: map[string]int{"来所": 4, "電話": 1},
		monthly:       map[string]int{"2025-01": 2, "2025-06": 7, "2024-12": 9},
	}
	st, err := NewService(repo, fixedClock).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, st.TotalUsers)
	assert.Equal(t, 5, st.ActivePlans)
	assert.Equal(t, 3, st.PendingApprovals)
	assert.Equal(t, 2, st.UpcomingMonitorings)
	assert.Equal(t, map[string]int{"draft": 3, "approved": 0, "active": 5, "ended": 0}, st.PlanStatus)
	assert.Equal(t, map[string]int{"0-17": 1, "18-39": 0, "40-64": 2, "65+": 1, "不明": 1}, st.UsersByAgeGroup)

	assert.Equal(t, "2025-06-01", repo.dueFrom.String())
	assert.Equal(t, "2025-06-30", repo.dueTo.String())
	assert.Equal(t, "2025-01-01", repo.monthlyFrom.String())

	assert.Equal(t, []MonthCount{
		{Month: "2025年01月", Count: 2},
		{Month: "2025年02月", Count: 0},
		{Month: "2025年03月", Count: 0},
		{Month: "2025年04月", Count: 0},
		{Month: "2025年05月", Count: 0},
		{Month: "2025年06月", Count: 7},
	}, st.MonthlyConsultations)
}

func TestService_Stats_MonthWalkIsCalendarExact(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC) }
	st, err := NewService(&fakeRepo{}, clock).Stats(context.Background())
	require.NoError(t, err)

	var months []string
	for _, m := range st.MonthlyConsultations {
		months = append(months, m.Month)
	}
	assert.Equal(t, []string{"2024年10月", "2024年11月", "2024年12月", "2025年01月", "2025年02月", "2025年03月"}, months)
	assert.NotNil(t, st.ConsultationByType)
}

func TestService_Stats_PropagatesError(t *testing.T) {
	_, err := NewService(&fakeRepo{failUsers: true}, fixedClock).Stats(context.Background())
	assert.Error(t, err)
}

func TestService_Alerts(t *testing.T) {
	repo := &fakeRepo{
		plans: []PlanAlert{
			{PlanID: 1, EndDate: dates.MustParse("2025-07-30")}, // 45 days out
			{PlanID: 2, EndDate: dates.MustParse("2026-01-01")}, // 200 days out
			{PlanID: 3, EndDate: dates.MustParse("2025-06-01")}, // already past
		},
		monitorings: []MonitoringAlert{
			{MonitoringID: 7, NextMonitoringDate: dates.MustParse("2025-06-05")},
			{MonitoringID: 8, NextMonitoringDate: dates.MustParse("2025-06-15")},
		},
		notebooks: []NotebookAlert{
			{NotebookID: 4, RenewalDate: dates.MustParse("2025-09-13")},
		},
	}
	a, err := NewService(repo, fixedClock).Alerts(context.Background(), DefaultAlertDays)
	require.NoError(t, err)

	require.Len(t, a.PlanExpiringSoon, 1)
	assert.Equal(t, int64(1), a.PlanExpiringSoon[0].PlanID)
	assert.Equal(t, 45, a.PlanExpiringSoon[0].DaysRemaining)
	assert.Equal(t, "plan_expiring", a.PlanExpiringSoon[0].Type)

	require.Len(t, a.MonitoringOverdue, 1)
	assert.Equal(t, 10, a.MonitoringOverdue[0].DaysOverdue)

	require.Len(t, a.NotebookExpiring, 1)
	assert.Equal(t, 90, a.NotebookExpiring[0].DaysRemaining)
	assert.Equal(t, 3, a.TotalAlerts)
}

func TestService_Alerts_EmptyListsAndBounds(t *testing.T) {
	svc := NewService(&fakeRepo{}, fixedClock)
	a, err := svc.Alerts(context.Background(), 30)
	require.NoError(t, err)
	assert.NotNil(t, a.PlanExpiringSoon)
	assert.NotNil(t, a.MonitoringOverdue)
	assert.NotNil(t, a.NotebookExpiring)

	_, err = svc.Alerts(context.Background(), 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Alerts(context.Background(), MaxAlertDays+1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestHandler_Alerts(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewService(&fakeRepo{}, fixedClock))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/alerts?days=30", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Alerts(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"plan_expiring_soon":[],"monitoring_overdue":[],"notebook_expiring":[],"total_alerts":0}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/alerts?days=abc", nil)
	assert.Error(t, h.Alerts(e.NewContext(req, httptest.NewRecorder())))
}
