package monitoring

import (
	"context"
	"time"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/auth"
	"github.com/soudan/casebook/internal/platform/dates"
)

var validTypes = map[string]bool{"定期": true, "随時": true}

var validSatisfaction = map[string]bool{
	"満足": true, "やや満足": true, "普通": true, "やや不満": true, "不満": true,
}

type Service struct {
	repo  Repository
	plans PlanOwners
	users UserChecker
	clock dates.Clock
}

func NewService(repo Repository, plans PlanOwners, users UserChecker, clock dates.Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{repo: repo, plans: plans, users: users, clock: clock}
}

func (s *Service) today() dates.Date { return dates.Today(s.clock) }

func validate(m *Monitoring) error {
	if m.PlanID == 0 {
		return apperr.Validation("plan_id is required")
	}
	if !validTypes[m.MonitoringType] {
		return apperr.Validation("invalid monitoring_type: %q", m.MonitoringType)
	}
	if m.Satisfaction != nil && *m.Satisfaction != "" && !validSatisfaction[*m.Satisfaction] {
		return apperr.Validation("invalid satisfaction: %q", *m.Satisfaction)
	}
	if m.MonitoringDate.IsZero() {
		return apperr.Validation("monitoring_date is required")
	}
	if !m.NextMonitoringDate.IsZero() && !m.NextMonitoringDate.After(m.MonitoringDate) {
		return apperr.Validation("next_monitoring_date must be after monitoring_date")
	}
	return nil
}

// checkPlan fills an absent user from the plan and rejects a user that
// does not own it.
func (s *Service) checkPlan(ctx context.Context, m *Monitoring) error {
	owner, err := s.plans.OwnerOf(ctx, m.PlanID)
	if err != nil {
		return err
	}
	if m.UserID == 0 {
		m.UserID = owner
	}
	if m.UserID != owner {
		return apperr.Validation("plan %d does not belong to user %d", m.PlanID, m.UserID)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*Monitoring, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.derive(s.today())
	return m, nil
}

// Create records a monitoring. Staff defaults to the caller, the date to
// today and the user to the plan's user.
func (s *Service) Create(ctx context.Context, in Input) (*Monitoring, error) {
	m := &Monitoring{
		StaffID:        auth.StaffIDFromContext(ctx),
		MonitoringDate: s.today(),
	}
	in.apply(m)
	if err := validate(m); err != nil {
		return nil, err
	}
	if err := s.checkPlan(ctx, m); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return s.load(ctx, m.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Monitoring, error) {
	return s.load(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, in Input) (*Monitoring, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(m)
	if err := validate(m); err != nil {
		return nil, err
	}
	if in.PlanID != nil || in.UserID != nil {
		if err := s.checkPlan(ctx, m); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Monitoring, int, error) {
	if f.MonitoringType != "" && !validTypes[f.MonitoringType] {
		return nil, 0, apperr.Validation("invalid monitoring_type: %q", f.MonitoringType)
	}
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	today := s.today()
	for _, m := range items {
		m.derive(today)
	}
	return items, total, nil
}

func (s *Service) ListForPlan(ctx context.Context, planID int64, limit, offset int) ([]*Monitoring, int, error) {
	if _, err := s.plans.OwnerOf(ctx, planID); err != nil {
		return nil, 0, err
	}
	return s.List(ctx, ListFilter{PlanID: &planID}, limit, offset)
}

func (s *Service) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*Monitoring, int, error) {
	if err := s.users.Exists(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.List(ctx, ListFilter{UserID: &userID}, limit, offset)
}
