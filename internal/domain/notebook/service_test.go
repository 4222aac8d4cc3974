package notebook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/dates"
)

type mockRepo struct {
	items  map[int64]*Notebook
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int64]*Notebook)}
}

func (m *mockRepo) Create(_ context.Context, n *Notebook) error {
	m.nextID++
	n.ID = m.nextID
	cp := *n
	m.items[n.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Notebook, error) {
	n, ok := m.items[id]
	if !ok || n.IsDeleted {
		return nil, apperr.NotFound("notebook", id)
	}
	cp := *n
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, n *Notebook) error {
	cp := *n
	m.items[n.ID] = &cp
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, id int64) error {
	n, ok := m.items[id]
	if !ok {
		return apperr.NotFound("notebook", id)
	}
	n.IsDeleted = true
	return nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Notebook, int, error) {
	var result []*Notebook
	for _, n := range m.items {
		if n.IsDeleted || (f.UserID != nil && n.UserID != *f.UserID) {
			continue
		}
		result = append(result, n)
	}
	return result, len(result), nil
}

type stubUsers map[int64]bool

func (s stubUsers) Exists(_ context.Context, id int64) error {
	if !s[id] {
		return apperr.NotFound("user", id)
	}
	return nil
}

func newTestService() *Service {
	return NewService(newMockRepo(), stubUsers{1: true, 2: true})
}

func input(userID int64, typ string) Input {
	return Input{UserID: &userID, NotebookType: &typ}
}

func TestService_Create(t *testing.T) {
	svc := newTestService()
	n, err := svc.Create(context.Background(), input(1, TypeRyoiku))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.UserID)
}

func TestService_Create_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, input(1, "身体障害者手帳"))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	in := input(1, TypeSeishin)
	issue, renewal := dates.MustParse("2025-04-01"), dates.MustParse("2025-03-01")
	in.IssueDate, in.RenewalDate = &issue, &renewal
	_, err = svc.Create(ctx, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Create(ctx, input(9, TypeRyoiku))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_ListForUser(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, input(1, TypeRyoiku))
	require.NoError(t, err)
	_, err = svc.Create(ctx, input(2, TypeSeishin))
	require.NoError(t, err)

	items, total, err := svc.ListForUser(ctx, 1, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, TypeRyoiku, items[0].NotebookType)

	_, _, err = svc.ListForUser(ctx, 42, 100, 0)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_Delete_HidesRecord(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	n, err := svc.Create(ctx, input(1, TypeRyoiku))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, n.ID))
	_, err = svc.Get(ctx, n.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, total, err := svc.List(ctx, ListFilter{}, 100, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestHandler_Create(t *testing.T) {
	h := NewHandler(newTestService())
	e := echo.New()
	body := `{"user_id":1,"notebook_type":"療育手帳","grade":"B1","issue_date":"2024-04-01","renewal_date":"2026-03-31"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notebooks", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Create(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"renewal_date":"2026-03-31"`)
}

func TestHandler_RegisterRoutes(t *testing.T) {
	e := echo.New()
	NewHandler(newTestService()).RegisterRoutes(e.Group("/api/v1"))

	routeSet := make(map[string]bool)
	for _, r := range e.Routes() {
		routeSet[r.Method+":"+r.Path] = true
	}
	for _, exp := range []string{
		"GET:/api/v1/notebooks",
		"POST:/api/v1/notebooks",
		"PUT:/api/v1/notebooks/:id",
		"DELETE:/api/v1/notebooks/:id",
		"GET:/api/v1/users/:id/notebooks",
	} {
		assert.True(t, routeSet[exp], "missing route %s", exp)
	}
}
