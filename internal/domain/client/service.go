package client

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/dates"
)

var validGenders = map[string]bool{
	"男性": true, "女性": true, "その他": true,
}

type Service struct {
	repo   Repository
	clock  dates.Clock
	logger zerolog.Logger
}

func NewService(repo Repository, clock dates.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{repo: repo, clock: clock, logger: logger}
}

func (s *Service) today() dates.Date { return dates.Today(s.clock) }

func (s *Service) withAge(u *User) *User {
	if !u.BirthDate.IsZero() {
		u.Age = dates.Age(u.BirthDate, s.today())
	}
	return u
}

func (s *Service) validate(ctx context.Context, u *User) error {
	if strings.TrimSpace(u.Name) == "" {
		return apperr.Validation("name is required")
	}
	if u.BirthDate.IsZero() {
		return apperr.Validation("birth_date is required")
	}
	if u.BirthDate.After(s.today()) {
		return apperr.Validation("birth_date must not be in the future")
	}
	if u.Gender != nil && *u.Gender != "" && !validGenders[*u.Gender] {
		return apperr.Validation("invalid gender: %s", *u.Gender)
	}
	if l := u.DisabilitySupportLevel; l != nil && (*l < 1 || *l > 6) {
		return apperr.Validation("disability_support_level must be between 1 and 6")
	}
	cert, exp := u.DisabilitySupportCertifiedDate, u.DisabilitySupportExpiryDate
	if !cert.IsZero() && !exp.IsZero() && exp.Before(cert) {
		return apperr.Validation("disability_support_expiry_date must not be before the certified date")
	}
	if u.AssignedStaffID != nil {
		ok, err := s.repo.StaffExists(ctx, *u.AssignedStaffID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Validation("assigned staff %d does not exist", *u.AssignedStaffID)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input) (*User, error) {
	u := &User{}
	in.apply(u)
	if err := s.validate(ctx, u); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, u.ID, false)
}

// Get returns the user with the assigned staff name resolved.
func (s *Service) Get(ctx context.Context, id int64, includeDeleted bool) (*User, error) {
	u, err := s.repo.GetByID(ctx, id, includeDeleted)
	if err != nil {
		return nil, err
	}
	return s.withAge(u), nil
}

// Exists returns NotFound unless the user exists and is not deleted.
func (s *Service) Exists(ctx context.Context, id int64) error {
	_, err := s.repo.GetByID(ctx, id, false)
	return err
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*User, int, error) {
	if f.MinAge != nil && f.MaxAge != nil && *f.MinAge > *f.MaxAge {
		return nil, 0, apperr.Validation("min_age must not exceed max_age")
	}
	if f.Gender != "" && !validGenders[f.Gender] {
		return nil, 0, apperr.Validation("invalid gender: %s", f.Gender)
	}
	items, total, err := s.repo.List(ctx, f, s.today(), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, u := range items {
		s.withAge(u)
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*User, error) {
	u, err := s.repo.GetByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	in.apply(u)
	if err := s.validate(ctx, u); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.Get(ctx, id, false)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}
