package staff

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	mu     sync.Mutex
	items  map[int64]*Staff
	nextID int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int64]*Staff)}
}

func (m *mockRepo) Create(_ context.Context, s *Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Username == s.Username {
			return apperr.Conflict("username %q is already taken", s.Username)
		}
	}
	m.nextID++
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("staff", id)
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepo) GetByUsername(_ context.Context, username string) (*Staff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.items {
		if s.Username == username {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("staff", username)
}

func (m *mockRepo) Update(_ context.Context, s *Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.items[s.ID]
	if !ok {
		return apperr.NotFound("staff", s.ID)
	}
	cp := *s
	cp.PasswordHash = existing.PasswordHash
	m.items[s.ID] = &cp
	return nil
}

func (m *mockRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok {
		return apperr.NotFound("staff", id)
	}
	s.PasswordHash = hash
	return nil
}

func (m *mockRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Staff, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Staff
	for _, s := range m.items {
		if f.Role != "" && s.Role != f.Role {
			continue
		}
		if f.IsActive != nil && s.IsActive != *f.IsActive {
			continue
		}
		if f.Search != "" && !strings.Contains(s.Name, f.Search) && !strings.Contains(s.Username, f.Search) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func newTestService() (*Service, *mockRepo, *auth.MemoryRevocationStore) {
	repo := newMockRepo()
	revocations := auth.NewMemoryRevocationStore()
	sessions := auth.NewSessions("test-secret-key-that-is-long-enough!", 30*time.Minute, "casebook")
	return NewService(repo, sessions, revocations, zerolog.Nop()), repo, revocations
}

func asStaff(id int64, role string) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{ID: id, Username: "actor", Role: role, Active: true})
}

func mustCreate(t *testing.T, svc *Service, username, role string) *Staff {
	t.Helper()
	st, err := svc.Create(context.Background(), CreateRequest{
		Username: username, Password: "secret123", Name: "担当 " + username, Role: role,
	})
	require.NoError(t, err)
	return st
}

// -- Tests --

func TestService_Create(t *testing.T) {
	svc, _, _ := newTestService()
	st := mustCreate(t, svc, "tanaka", "")
	assert.Equal(t, auth.RoleStaff, st.Role)
	assert.True(t, st.IsActive)
	assert.NotEqual(t, "secret123", st.PasswordHash)
	assert.True(t, auth.CheckPassword(st.PasswordHash, "secret123"))
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"missing username", CreateRequest{Password: "secret123", Name: "x"}},
		{"missing name", CreateRequest{Username: "a", Password: "secret123"}},
		{"short password", CreateRequest{Username: "a", Password: "12345", Name: "x"}},
		{"bad role", CreateRequest{Username: "a", Password: "secret123", Name: "x", Role: "root"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestService_Create_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService()
	mustCreate(t, svc, "tanaka", "")
	_, err := svc.Create(context.Background(), CreateRequest{Username: "tanaka", Password: "secret123", Name: "x"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestService_Login(t *testing.T) {
	svc, _, _ := newTestService()
	created := mustCreate(t, svc, "suzuki", "")

	st, token, err := svc.Login(context.Background(), LoginRequest{Username: "suzuki", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, st.ID)
	assert.NotEmpty(t, token)
}

func TestService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	mustCreate(t, svc, "suzuki", "")

	_, _, err := svc.Login(context.Background(), LoginRequest{Username: "suzuki", Password: "wrong-pass"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, _, err = svc.Login(context.Background(), LoginRequest{Username: "nobody", Password: "secret123"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestService_Login_Inactive(t *testing.T) {
	svc, repo, _ := newTestService()
	st := mustCreate(t, svc, "suzuki", "")
	repo.items[st.ID].IsActive = false

	_, _, err := svc.Login(context.Background(), LoginRequest{Username: "suzuki", Password: "secret123"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestService_Logout_RevokesToken(t *testing.T) {
	svc, _, revocations := newTestService()
	defer revocations.Close()
	mustCreate(t, svc, "suzuki", "")
	_, token, err := svc.Login(context.Background(), LoginRequest{Username: "suzuki", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token))
	assert.Equal(t, 1, revocations.Count())

	// garbage tokens are ignored
	require.NoError(t, svc.Logout(context.Background(), "not-a-token"))
	assert.Equal(t, 1, revocations.Count())
}

func TestService_LookupPrincipal(t *testing.T) {
	svc, _, _ := newTestService()
	st := mustCreate(t, svc, "admin", auth.RoleAdmin)

	p, err := svc.LookupPrincipal(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, &auth.Principal{ID: st.ID, Username: "admin", Role: auth.RoleAdmin, Active: true}, p)

	_, err = svc.LookupPrincipal(context.Background(), 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_Update_Self(t *testing.T) {
	svc, _, _ := newTestService()
	st := mustCreate(t, svc, "sato", "")
	name := "佐藤 花子"

	updated, err := svc.Update(asStaff(st.ID, auth.RoleStaff), st.ID, UpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
}

func TestService_Update_RoleNeedsAdmin(t *testing.T) {
	svc, _, _ := newTestService()
	st := mustCreate(t, svc, "sato", "")
	role := auth.RoleAdmin

	_, err := svc.Update(asStaff(st.ID, auth.RoleStaff), st.ID, UpdateRequest{Role: &role})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	updated, err := svc.Update(asStaff(100, auth.RoleAdmin), st.ID, UpdateRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, updated.Role)
}

func TestService_Update_OtherStaffForbidden(t *testing.T) {
	svc, _, _ := newTestService()
	st := mustCreate(t, svc, "sato", "")
	name := "x"
	_, err := svc.Update(asStaff(st.ID+1, auth.RoleStaff), st.ID, UpdateRequest{Name: &name})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestService_Delete(t *testing.T) {
	svc, repo, _ := newTestService()
	admin := mustCreate(t, svc, "admin", auth.RoleAdmin)
	st := mustCreate(t, svc, "sato", "")

	require.NoError(t, svc.Delete(asStaff(admin.ID, auth.RoleAdmin), st.ID))
	assert.False(t, repo.items[st.ID].IsActive)

	err := svc.Delete(asStaff(admin.ID, auth.RoleAdmin), admin.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.True(t, repo.items[admin.ID].IsActive)
}

func TestService_ChangePassword(t *testing.T) {
	svc, repo, _ := newTestService()
	st := mustCreate(t, svc, "sato", "")
	ctx := asStaff(st.ID, auth.RoleStaff)

	err := svc.ChangePassword(ctx, st.ID, ChangePasswordRequest{CurrentPassword: "wrong!!", NewPassword: "newpass1"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = svc.ChangePassword(ctx, st.ID, ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "abc"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = svc.ChangePassword(asStaff(st.ID+1, auth.RoleAdmin), st.ID, ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newpass1"})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, svc.ChangePassword(ctx, st.ID, ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newpass1"}))
	assert.True(t, auth.CheckPassword(repo.items[st.ID].PasswordHash, "newpass1"))
}

func TestService_EnsureAdmin(t *testing.T) {
	svc, _, _ := newTestService()
	created, err := svc.EnsureAdmin(context.Background(), "admin", "admin123", "管理者")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(context.Background(), "admin", "admin123", "管理者")
	require.NoError(t, err)
	assert.False(t, created)
}
