package organization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/dates"
)

// -- Mock Repositories --

type mockOrgRepo struct {
	items  map[int64]*Organization
	nextID int64
}

func (m *mockOrgRepo) Create(_ context.Context, o *Organization) error {
	m.nextID++
	o.ID = m.nextID
	cp := *o
	m.items[o.ID] = &cp
	return nil
}

func (m *mockOrgRepo) GetByID(_ context.Context, id int64) (*Organization, error) {
	o, ok := m.items[id]
	if !ok || o.IsDeleted {
		return nil, apperr.NotFound("organization", id)
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrgRepo) Update(_ context.Context, o *Organization) error {
	cp := *o
	m.items[o.ID] = &cp
	return nil
}

func (m *mockOrgRepo) SoftDelete(_ context.Context, id int64) error {
	o, ok := m.items[id]
	if !ok {
		return apperr.NotFound("organization", id)
	}
	o.IsDeleted = true
	return nil
}

func (m *mockOrgRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Organization, int, error) {
	var result []*Organization
	for _, o := range m.items {
		if o.IsDeleted || (f.OrganizationType != "" && o.OrganizationType != f.OrganizationType) {
			continue
		}
		result = append(result, o)
	}
	return result, len(result), nil
}

type mockLinkRepo struct {
	orgs   *mockOrgRepo
	items  map[int64]*Link
	nextID int64
}

func (m *mockLinkRepo) Create(_ context.Context, l *Link) error {
	m.nextID++
	l.ID = m.nextID
	cp := *l
	m.items[l.ID] = &cp
	return nil
}

func (m *mockLinkRepo) GetByID(_ context.Context, id int64) (*Link, error) {
	l, ok := m.items[id]
	if !ok || l.IsDeleted {
		return nil, apperr.NotFound("user organization", id)
	}
	cp := *l
	if o, ok := m.orgs.items[l.OrganizationID]; ok {
		cp.OrganizationName = o.Name
		cp.OrganizationType = o.OrganizationType
	}
	return &cp, nil
}

func (m *mockLinkRepo) Update(_ context.Context, l *Link) error {
	cp := *l
	m.items[l.ID] = &cp
	return nil
}

func (m *mockLinkRepo) SoftDelete(_ context.Context, id int64) error {
	l, ok := m.items[id]
	if !ok {
		return apperr.NotFound("user organization", id)
	}
	l.IsDeleted = true
	return nil
}

func (m *mockLinkRepo) ListByUser(ctx context.Context, userID int64) ([]*Link, error) {
	var result []*Link
	for id, l := range m.items {
		if !l.IsDeleted && l.UserID == userID {
			got, _ := m.GetByID(ctx, id)
			result = append(result, got)
		}
	}
	return result, nil
}

func (m *mockLinkRepo) ListByOrganization(_ context.Context, orgID int64) ([]*Link, error) {
	var result []*Link
	for _, l := range m.items {
		if !l.IsDeleted && l.OrganizationID == orgID {
			result = append(result, l)
		}
	}
	return result, nil
}

type stubUsers map[int64]bool

func (s stubUsers) Exists(_ context.Context, id int64) error {
	if !s[id] {
		return apperr.NotFound("user", id)
	}
	return nil
}

func newTestService() *Service {
	orgs := &mockOrgRepo{items: make(map[int64]*Organization)}
	links := &mockLinkRepo{orgs: orgs, items: make(map[int64]*Link)}
	return NewService(orgs, links, stubUsers{1: true})
}

func strp(s string) *string { return &s }

func mustOrg(t *testing.T, svc *Service, name, typ string) *Organization {
	t.Helper()
	o, err := svc.Create(context.Background(), Input{Name: strp(name), OrganizationType: strp(typ)})
	require.NoError(t, err)
	return o
}

// -- Tests --

func TestService_CreateOrganization_Validation(t *testing.T) {
	svc := newTestService()
	_, err := svc.Create(context.Background(), Input{Name: strp("ひまわり作業所"), OrganizationType: strp("学校")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Create(context.Background(), Input{OrganizationType: strp(TypeService)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestService_LinkUser(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	o := mustOrg(t, svc, "ひまわり作業所", TypeService)

	start := dates.MustParse("2025-04-01")
	l, err := svc.LinkUser(ctx, 1, LinkInput{OrganizationID: &o.ID, StartDate: &start, Frequency: strp("週3回")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), l.UserID)
	assert.Equal(t, "ひまわり作業所", l.OrganizationName)

	links, err := svc.LinksForUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestService_LinkUser_Rejects(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	o := mustOrg(t, svc, "さくら病院", TypeMedical)

	other := int64(2)
	_, err := svc.LinkUser(ctx, 1, LinkInput{UserID: &other, OrganizationID: &o.ID})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "body user_id must match the URL")

	_, err = svc.LinkUser(ctx, 5, LinkInput{OrganizationID: &o.ID})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	missing := int64(99)
	_, err = svc.LinkUser(ctx, 1, LinkInput{OrganizationID: &missing})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	start, end := dates.MustParse("2025-04-01"), dates.MustParse("2025-03-01")
	_, err = svc.LinkUser(ctx, 1, LinkInput{OrganizationID: &o.ID, StartDate: &start, EndDate: &end})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestService_DeleteOrganization_HidesLinksFromOrgView(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	o := mustOrg(t, svc, "さくら病院", TypeMedical)
	_, err := svc.LinkUser(ctx, 1, LinkInput{OrganizationID: &o.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, o.ID))
	_, err = svc.LinksForOrganization(ctx, o.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_UpdateLink(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	o := mustOrg(t, svc, "さくら病院", TypeMedical)
	l, err := svc.LinkUser(ctx, 1, LinkInput{OrganizationID: &o.ID})
	require.NoError(t, err)

	updated, err := svc.UpdateLink(ctx, l.ID, LinkInput{Frequency: strp("月1回")})
	require.NoError(t, err)
	assert.Equal(t, "月1回", *updated.Frequency)

	moved := int64(2)
	_, err = svc.UpdateLink(ctx, l.ID, LinkInput{UserID: &moved})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	require.NoError(t, svc.DeleteLink(ctx, l.ID))
	require.NoError(t, svc.DeleteLink(ctx, l.ID))
	assert.True(t, apperr.Is(svc.DeleteLink(ctx, 999), apperr.KindNotFound))
}
