package plan

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/auth"
	"github.com/soudan/casebook/internal/platform/dates"
)

var validPlanTypes = map[string]bool{TypeInitial: true, TypeRenewal: true}

type Service struct {
	repo        Repository
	evaluations EvaluationRepository
	users       UserChecker
	clock       dates.Clock
	logger      zerolog.Logger
}

func NewService(repo Repository, evaluations EvaluationRepository, users UserChecker, clock dates.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{repo: repo, evaluations: evaluations, users: users, clock: clock, logger: logger}
}

func (s *Service) today() dates.Date { return dates.Today(s.clock) }

func (s *Service) validate(ctx context.Context, p *Plan) error {
	if p.UserID == 0 {
		return apperr.Validation("user_id is required")
	}
	if !validPlanTypes[p.PlanType] {
		return apperr.Validation("invalid plan_type: %q", p.PlanType)
	}
	if strings.TrimSpace(p.PlanNumber) == "" {
		return apperr.Validation("plan_number is required")
	}
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return apperr.Validation("start_date and end_date are required")
	}
	if !p.EndDate.After(p.StartDate) {
		return apperr.Validation("end_date must be after start_date")
	}
	if err := s.users.Exists(ctx, p.UserID); err != nil {
		return err
	}
	taken, err := s.repo.PlanNumberTaken(ctx, p.PlanNumber, p.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("plan_number %q is already in use", p.PlanNumber)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id int64) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.derive(s.today())
	return p, nil
}

// Create stores a new plan in draft. Staff defaults to the caller and the
// created date to today.
func (s *Service) Create(ctx context.Context, in Input) (*Plan, error) {
	p := &Plan{
		StaffID:        auth.StaffIDFromContext(ctx),
		CreatedDate:    s.today(),
		Services:       []ServiceItem{},
		ApprovalStatus: StatusDraft,
	}
	in.apply(p)
	if p.Services == nil {
		p.Services = []ServiceItem{}
	}
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.load(ctx, p.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Plan, error) {
	return s.load(ctx, id)
}

// Update edits a draft plan. Approved plans are frozen.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.ApprovalStatus != StatusDraft {
		return nil, apperr.Conflict("plan %d is %s and can no longer be edited", id, p.ApprovalStatus)
	}
	in.apply(p)
	if p.Services == nil {
		p.Services = []ServiceItem{}
	}
	if err := s.validate(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Approve moves the plan one step along draft → approved → active → ended.
func (s *Service) Approve(ctx context.Context, id int64, req ApproveRequest) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ApprovalStatus == "" {
		return nil, apperr.Validation("approval_status is required")
	}
	next, ok := p.ApprovalStatus.Next()
	if !ok || req.ApprovalStatus != next {
		return nil, apperr.Conflict("cannot change approval_status from %s to %s", p.ApprovalStatus, req.ApprovalStatus)
	}
	from := p.ApprovalStatus
	p.ApprovalStatus = next
	switch {
	case req.ApprovalDate != nil:
		p.ApprovalDate = *req.ApprovalDate
	case next == StatusApproved:
		p.ApprovalDate = s.today()
	}
	if err := s.repo.UpdateApproval(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("plan_id", id).
		Str("from", string(from)).
		Str("to", string(next)).
		Int64("staff_id", auth.StaffIDFromContext(ctx)).
		Msg("plan approval status changed")
	return s.load(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Plan, int, error) {
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	today := s.today()
	for _, p := range items {
		p.derive(today)
	}
	return items, total, nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*Plan, int, error) {
	if err := s.users.Exists(ctx, userID); err != nil {
		return nil, 0, err
	}
	return s.List(ctx, ListFilter{UserID: &userID}, limit, offset)
}

// LatestForUser returns the most recently created plan, or nil.
func (s *Service) LatestForUser(ctx context.Context, userID int64) (*Plan, error) {
	items, _, err := s.List(ctx, ListFilter{UserID: &userID}, 1, 0)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

// -- Evaluations --

func validateEvaluation(e *Evaluation) error {
	if !validAchievement[e.AchievementStatus] {
		return apperr.Validation("invalid achievement_status: %q", e.AchievementStatus)
	}
	for _, g := range []*string{e.Goal1Achievement, e.Goal2Achievement, e.Goal3Achievement} {
		if g != nil && *g != "" && !validAchievement[*g] {
			return apperr.Validation("invalid goal achievement: %q", *g)
		}
	}
	if e.EvaluationDate.IsZero() {
		return apperr.Validation("evaluation_date is required")
	}
	return nil
}

// CreateEvaluation records an evaluation against the plan's user. Staff
// defaults to the caller and the date to today.
func (s *Service) CreateEvaluation(ctx context.Context, planID int64, in EvaluationInput) (*Evaluation, error) {
	p, err := s.repo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	e := &Evaluation{
		PlanID:         p.ID,
		UserID:         p.UserID,
		StaffID:        auth.StaffIDFromContext(ctx),
		EvaluationDate: s.today(),
	}
	in.apply(e)
	if err := validateEvaluation(e); err != nil {
		return nil, err
	}
	if err := s.evaluations.Create(ctx, e); err != nil {
		return nil, err
	}
	return s.evaluations.GetByID(ctx, e.ID)
}

func (s *Service) GetEvaluation(ctx context.Context, id int64) (*Evaluation, error) {
	return s.evaluations.GetByID(ctx, id)
}

func (s *Service) UpdateEvaluation(ctx context.Context, id int64, in EvaluationInput) (*Evaluation, error) {
	e, err := s.evaluations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(e)
	if err := validateEvaluation(e); err != nil {
		return nil, err
	}
	if err := s.evaluations.Update(ctx, e); err != nil {
		return nil, err
	}
	return s.evaluations.GetByID(ctx, id)
}

func (s *Service) DeleteEvaluation(ctx context.Context, id int64) error {
	return s.evaluations.SoftDelete(ctx, id)
}

func (s *Service) Evaluations(ctx context.Context, planID int64) ([]*Evaluation, error) {
	if _, err := s.repo.GetByID(ctx, planID); err != nil {
		return nil, err
	}
	return s.evaluations.ListByPlan(ctx, planID)
}

// LatestEvaluation returns the newest evaluation of the plan, or nil.
func (s *Service) LatestEvaluation(ctx context.Context, planID int64) (*Evaluation, error) {
	items, err := s.evaluations.ListByPlan(ctx, planID)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

// OwnerOf returns the user a live plan belongs to.
func (s *Service) OwnerOf(ctx context.Context, planID int64) (int64, error) {
	p, err := s.repo.GetByID(ctx, planID)
	if err != nil {
		return 0, err
	}
	return p.UserID, nil
}
