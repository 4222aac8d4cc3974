package staff

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/auth"
)

var validRoles = map[string]bool{
	auth.RoleAdmin: true, auth.RoleStaff: true,
}

type Service struct {
	repo        Repository
	sessions    *auth.Sessions
	revocations auth.RevocationStore
	logger      zerolog.Logger
}

func NewService(repo Repository, sessions *auth.Sessions, revocations auth.RevocationStore, logger zerolog.Logger) *Service {
	return &Service{repo: repo, sessions: sessions, revocations: revocations, logger: logger}
}

// -- Authentication --

// Login verifies the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Staff, string, error) {
	st, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, "", apperr.Unauthenticated("incorrect username or password")
	}
	if err != nil {
		return nil, "", err
	}
	if !auth.CheckPassword(st.PasswordHash, req.Password) {
		return nil, "", apperr.Unauthenticated("incorrect username or password")
	}
	if !st.IsActive {
		return nil, "", apperr.Forbidden("account is inactive")
	}

	token, _, err := s.sessions.Issue(st.ID, st.Username, st.Role)
	if err != nil {
		return nil, "", err
	}
	s.logger.Info().Int64("staff_id", st.ID).Msg("staff logged in")
	return st, token, nil
}

// Logout revokes token until it expires. Invalid or expired tokens are
// already unusable, so they are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" || s.revocations == nil {
		return nil
	}
	claims, err := s.sessions.Parse(token)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// SessionTTL is the lifetime of tokens issued by Login.
func (s *Service) SessionTTL() time.Duration {
	return s.sessions.TTL()
}

// LookupPrincipal implements auth.PrincipalLookup.
func (s *Service) LookupPrincipal(ctx context.Context, staffID int64) (*auth.Principal, error) {
	st, err := s.repo.GetByID(ctx, staffID)
	if err != nil {
		return nil, err
	}
	return st.Principal(), nil
}

// -- Staff accounts --

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Staff, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return nil, apperr.Validation("username is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if req.Role == "" {
		req.Role = auth.RoleStaff
	}
	if !validRoles[req.Role] {
		return nil, apperr.Validation("invalid role: %s", req.Role)
	}
	if len([]rune(req.Password)) < auth.MinPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", auth.MinPasswordLength)
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	st := &Staff{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Staff, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Staff, int, error) {
	if f.Role != "" && !validRoles[f.Role] {
		return nil, 0, apperr.Validation("invalid role: %s", f.Role)
	}
	return s.repo.List(ctx, f, limit, offset)
}

// Update lets staff edit their own profile. Editing others, and any change
// to role or active flag, needs the admin role.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Staff, error) {
	actor := auth.StaffIDFromContext(ctx)
	admin := auth.IsAdmin(ctx)
	if actor != id && !admin {
		return nil, apperr.Forbidden("cannot edit another staff member")
	}
	if (req.Role != nil || req.IsActive != nil) && !admin {
		return nil, apperr.Forbidden("only admins can change role or active status")
	}

	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		st.Name = *req.Name
	}
	if req.Email != nil {
		st.Email = req.Email
	}
	if req.Role != nil {
		if !validRoles[*req.Role] {
			return nil, apperr.Validation("invalid role: %s", *req.Role)
		}
		st.Role = *req.Role
	}
	if req.IsActive != nil {
		if !*req.IsActive && id == actor {
			return nil, apperr.Forbidden("cannot deactivate your own account")
		}
		st.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Delete deactivates the account. Staff rows stay because consultations,
// plans and monitorings reference their author.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id == auth.StaffIDFromContext(ctx) {
		return apperr.Forbidden("cannot delete your own account")
	}
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	st.IsActive = false
	if err := s.repo.Update(ctx, st); err != nil {
		return err
	}
	s.logger.Info().Int64("staff_id", id).Int64("by", auth.StaffIDFromContext(ctx)).Msg("staff deactivated")
	return nil
}

// ChangePassword replaces the caller's own password.
func (s *Service) ChangePassword(ctx context.Context, id int64, req ChangePasswordRequest) error {
	if id != auth.StaffIDFromContext(ctx) {
		return apperr.Forbidden("can only change your own password")
	}
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(st.PasswordHash, req.CurrentPassword) {
		return apperr.Validation("current password is incorrect")
	}
	if len([]rune(req.NewPassword)) < auth.MinPasswordLength {
		return apperr.Validation("password must be at least %d characters", auth.MinPasswordLength)
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

// EnsureAdmin creates an admin account unless the username exists.
// It reports whether a new account was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password, name string) (bool, error) {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		return false, err
	}
	if _, err := s.Create(ctx, CreateRequest{Username: username, Password: password, Name: name, Role: auth.RoleAdmin}); err != nil {
		return false, err
	}
	return true, nil
}
