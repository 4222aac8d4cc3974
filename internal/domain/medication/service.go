package medication

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/auth"
	"github.com/soudan/casebook/internal/platform/dates"
)

type Service struct {
	repo    Repository
	doctors DoctorRepository
	users   UserChecker
	tx      Transactor
	clock   dates.Clock
	logger  zerolog.Logger
}

func NewService(repo Repository, doctors DoctorRepository, users UserChecker, tx Transactor, clock dates.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{repo: repo, doctors: doctors, users: users, tx: tx, clock: clock, logger: logger}
}

// -- Prescribing doctors --

func (s *Service) CreateDoctor(ctx context.Context, in DoctorInput) (*Doctor, error) {
	d := &Doctor{}
	in.apply(d)
	if strings.TrimSpace(d.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) UpdateDoctor(ctx context.Context, id int64, in DoctorInput) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(d)
	if strings.TrimSpace(d.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id int64) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, search string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, search, limit, offset)
}

// -- Medications --

func (s *Service) validate(ctx context.Context, m *Medication) error {
	if m.UserID == 0 {
		return apperr.Validation("user_id is required")
	}
	if strings.TrimSpace(m.MedicationName) == "" {
		return apperr.Validation("medication_name is required")
	}
	if m.StartDate.IsZero() {
		return apperr.Validation("start_date is required")
	}
	if !m.EndDate.IsZero() && m.EndDate.Before(m.StartDate) {
		return apperr.Validation("end_date must not be before start_date")
	}
	if err := s.users.Exists(ctx, m.UserID); err != nil {
		return err
	}
	if m.PrescribingDoctorID != nil {
		if _, err := s.doctors.GetByID(ctx, *m.PrescribingDoctorID); err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return apperr.Validation("prescribing doctor %d does not exist", *m.PrescribingDoctorID)
			}
			return err
		}
	}
	return nil
}

// Create adds a medication. New medications are current unless the input
// says otherwise.
func (s *Service) Create(ctx context.Context, in Input) (*Medication, error) {
	m := &Medication{IsCurrent: true}
	in.apply(m)
	if err := s.validate(ctx, m); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, m.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Medication, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the input and appends one change row per modified field.
// The row update and the change rows commit together.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Medication, error) {
	var updated *Medication
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		before, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		after := *before
		in.apply(&after)
		if err := s.validate(ctx, &after); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, &after); err != nil {
			return err
		}

		var staffID *int64
		if sid := auth.StaffIDFromContext(ctx); sid != 0 {
			staffID = &sid
		}
		changes := diff(before, &after, dates.Today(s.clock), staffID)
		for _, c := range changes {
			c := c
			if err := s.repo.AddChange(ctx, &c); err != nil {
				return err
			}
		}
		if len(changes) > 0 {
			s.logger.Info().
				Int64("medication_id", id).
				Int("changes", len(changes)).
				Msg("medication updated")
		}
		updated, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Medication, int, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *Service) ListForUser(ctx context.Context, userID int64, f ListFilter, limit, offset int) ([]*Medication, int, error) {
	if err := s.users.Exists(ctx, userID); err != nil {
		return nil, 0, err
	}
	f.UserID = &userID
	return s.repo.List(ctx, f, limit, offset)
}

// Changes returns the change trail of a medication, newest first.
func (s *Service) Changes(ctx context.Context, medicationID int64) ([]*Change, error) {
	if _, err := s.repo.GetByID(ctx, medicationID); err != nil {
		return nil, err
	}
	return s.repo.ListChanges(ctx, medicationID)
}
