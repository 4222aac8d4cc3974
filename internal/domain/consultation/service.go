package consultation

import (
	"context"
	"strings"
	"time"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/auth"
	"github.com/soudan/casebook/internal/platform/dates"
)

var validTypes = map[string]bool{
	"来所": true, "訪問": true, "電話": true, "その他": true,
}

type Service struct {
	repo  Repository
	users UserChecker
	clock dates.Clock
}

func NewService(repo Repository, users UserChecker, clock dates.Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{repo: repo, users: users, clock: clock}
}

func (s *Service) validate(ctx context.Context, c *Consultation, checkStaff bool) error {
	if c.UserID == 0 {
		return apperr.Validation("user_id is required")
	}
	if !validTypes[c.ConsultationType] {
		return apperr.Validation("invalid consultation_type: %q", c.ConsultationType)
	}
	if strings.TrimSpace(c.Content) == "" {
		return apperr.Validation("content is required")
	}
	if err := s.users.Exists(ctx, c.UserID); err != nil {
		return err
	}
	if !checkStaff {
		return nil
	}
	ok, err := s.repo.StaffActive(ctx, c.StaffID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("staff %d does not exist or is inactive", c.StaffID)
	}
	return nil
}

// Create records a consultation. Staff defaults to the caller and the date
// to today.
func (s *Service) Create(ctx context.Context, in Input) (*Consultation, error) {
	c := &Consultation{
		StaffID:          auth.StaffIDFromContext(ctx),
		ConsultationDate: dates.Today(s.clock),
	}
	in.apply(c)
	if err := s.validate(ctx, c, true); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, c.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*Consultation, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if c.ConsultationDate.IsZero() {
		return nil, apperr.Validation("consultation_date is required")
	}
	// an author who has since left does not block edits
	if err := s.validate(ctx, c, in.StaffID != nil); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Consultation, int, error) {
	if f.ConsultationType != "" && !validTypes[f.ConsultationType] {
		return nil, 0, apperr.Validation("invalid consultation_type: %q", f.ConsultationType)
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateTo.Before(f.DateFrom) {
		return nil, 0, apperr.Validation("date_to must not be before date_from")
	}
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*Consultation, int, error) {
	if err := s.users.Exists(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, ListFilter{UserID: &userID}, limit, offset)
}
