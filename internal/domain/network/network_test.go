package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudan/casebook/internal/domain/client"
	"github.com/soudan/casebook/internal/domain/organization"
	"github.com/soudan/casebook/internal/domain/staff"
	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/dates"
)

type stubUsers map[int64]*client.User

func (s stubUsers) Get(_ context.Context, id int64, _ bool) (*client.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	return u, nil
}

type stubLinks map[int64][]*organization.Link

func (s stubLinks) LinksForUser(_ context.Context, userID int64) ([]*organization.Link, error) {
	return s[userID], nil
}

type stubStaffs map[int64]*staff.Staff

func (s stubStaffs) Get(_ context.Context, id int64) (*staff.Staff, error) {
	st, ok := s[id]
	if !ok {
		return nil, apperr.NotFound("staff", id)
	}
	return st, nil
}

func strp(s string) *string { return &s }

func newTestService() *Service {
	staffID := int64(5)
	users := stubUsers{
		1: {ID: 1, Name: "山田 太郎", Age: 45, AssignedStaffID: &staffID,
			GuardianName: strp("山田 花子"), GuardianType: strp("保佐人"), GuardianContact: strp("090-0000-0000")},
		2: {ID: 2, Name: "佐藤 次郎"},
	}
	links := stubLinks{1: {
		{OrganizationID: 10, OrganizationName: "ひまわり作業所", OrganizationType: organization.TypeService,
			RelationshipType: strp("通所"), Frequency: strp("週5回"), StartDate: dates.MustParse("2024-04-01")},
		{OrganizationID: 11, OrganizationName: "さくら病院", OrganizationType: organization.TypeMedical},
	}}
	staffs := stubStaffs{5: {ID: 5, Name: "鈴木 一郎", Role: "staff"}}
	return NewService(users, links, staffs)
}

func TestService_Build(t *testing.T) {
	g, err := newTestService().Build(context.Background(), 1)
	require.NoError(t, err)

	types := make(map[string]string)
	for _, n := range g.Nodes {
		types[n.ID] = n.Type
	}
	assert.Equal(t, map[string]string{
		"user_1":     NodeUser,
		"org_10":     NodeService,
		"org_11":     NodeMedical,
		"staff_5":    NodeStaff,
		"guardian_1": NodeGuardian,
	}, types)

	rels := make(map[string]string)
	for _, e := range g.Edges {
		assert.Equal(t, "user_1", e.From)
		rels[e.To] = e.Relationship
	}
	assert.Equal(t, "通所", rels["org_10"])
	assert.Equal(t, "関連", rels["org_11"], "missing relationship falls back to 関連")
	assert.Equal(t, "担当", rels["staff_5"])
	assert.Equal(t, "保佐人", rels["guardian_1"])
}

func TestService_Build_UserOnly(t *testing.T) {
	g, err := newTestService().Build(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)

	_, err = newTestService().Build(context.Background(), 3)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestOrgNodeType(t *testing.T) {
	tests := []struct {
		rel     *string
		orgType string
		want    string
	}{
		{strp("主治医"), organization.TypeOther, NodeMedical},
		{strp("成年後見"), organization.TypeOther, NodeGuardian},
		{nil, organization.TypeGuardian, NodeGuardian},
		{strp("相談"), organization.TypeService, NodeService},
		{nil, "訪問介護事業所", NodeService},
		{nil, organization.TypeOther, NodeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, orgNodeType(tt.rel, tt.orgType), "rel=%v org=%s", tt.rel, tt.orgType)
	}
}

func TestHandler_Get(t *testing.T) {
	e := echo.New()
	h := NewHandler(newTestService())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/1/network", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_name":"山田 太郎"`)
	assert.Contains(t, rec.Body.String(), `"start_date":"2024-04-01"`)
}
