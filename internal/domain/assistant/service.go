// Package assistant drafts support plan proposals with a local language
// model, from the records already kept for a user.
package assistant

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/soudan/casebook/internal/domain/client"
	"github.com/soudan/casebook/internal/domain/consultation"
	"github.com/soudan/casebook/internal/domain/medication"
	"github.com/soudan/casebook/internal/domain/plan"
	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/llm"
)

const recentConsultations = 5

type UserSource interface {
	Get(ctx context.Context, id int64, includeDeleted bool) (*client.User, error)
}

type MedicationSource interface {
	ListForUser(ctx context.Context, userID int64, f medication.ListFilter, limit, offset int) ([]*medication.Medication, int, error)
}

type ConsultationSource interface {
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]*consultation.Consultation, int, error)
}

type PlanSource interface {
	Get(ctx context.Context, id int64) (*plan.Plan, error)
	LatestForUser(ctx context.Context, userID int64) (*plan.Plan, error)
	LatestEvaluation(ctx context.Context, planID int64) (*plan.Evaluation, error)
}

type Model interface {
	Chat(ctx context.Context, model string, messages []llm.Message) (string, error)
	Models(ctx context.Context) ([]llm.Model, error)
	DefaultModel() string
}

type ProposeRequest struct {
	UserID         int64  `json:"user_id"`
	PreviousPlanID *int64 `json:"previous_plan_id"`
	Model          string `json:"model"`
}

type DataSources struct {
	UserProfile        bool `json:"user_profile"`
	Medications        bool `json:"medications"`
	Consultations      bool `json:"consultations"`
	PreviousPlan       bool `json:"previous_plan"`
	PreviousEvaluation bool `json:"previous_evaluation"`
}

type ProposeResponse struct {
	UserID      int64       `json:"user_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	ModelUsed   string      `json:"model_used"`
	Proposal    Proposal    `json:"proposal"`
	DataSources DataSources `json:"data_sources"`
}

type Sources struct {
	Users         UserSource
	Medications   MedicationSource
	Consultations ConsultationSource
	Plans         PlanSource
}

type Service struct {
	src    Sources
	model  Model
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(src Sources, model Model, logger zerolog.Logger) *Service {
	return &Service{src: src, model: model, logger: logger, now: time.Now}
}

func (s *Service) gather(ctx context.Context, req ProposeRequest) (planContext, error) {
	var pc planContext
	var err error
	if pc.user, err = s.src.Users.Get(ctx, req.UserID, false); err != nil {
		return pc, err
	}

	current := true
	if pc.medications, _, err = s.src.Medications.ListForUser(ctx, req.UserID, medication.ListFilter{IsCurrent: &current}, 100, 0); err != nil {
		return pc, err
	}
	if pc.consultations, _, err = s.src.Consultations.ListForUser(ctx, req.UserID, recentConsultations, 0); err != nil {
		return pc, err
	}

	if req.PreviousPlanID != nil {
		pc.previous, err = s.src.Plans.Get(ctx, *req.PreviousPlanID)
		if err != nil {
			return pc, err
		}
		if pc.previous.UserID != req.UserID {
			return pc, apperr.Validation("plan %d does not belong to user %d", *req.PreviousPlanID, req.UserID)
		}
	} else if pc.previous, err = s.src.Plans.LatestForUser(ctx, req.UserID); err != nil {
		return pc, err
	}
	if pc.previous != nil {
		if pc.evaluation, err = s.src.Plans.LatestEvaluation(ctx, pc.previous.ID); err != nil {
			return pc, err
		}
	}
	return pc, nil
}

// Propose builds the prompt from the user's records and asks the model for
// a plan draft. A failed model call is returned as is; nothing is retried.
func (s *Service) Propose(ctx context.Context, req ProposeRequest) (*ProposeResponse, error) {
	if req.UserID <= 0 {
		return nil, apperr.Validation("user_id is required")
	}
	pc, err := s.gather(ctx, req)
	if err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = s.model.DefaultModel()
	}
	started := s.now()
	reply, err := s.model.Chat(ctx, model, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(pc) + replyInJapanese},
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", req.UserID).Str("model", model).Msg("plan proposal failed")
		return nil, err
	}
	s.logger.Info().
		Int64("user_id", req.UserID).
		Str("model", model).
		Dur("elapsed", s.now().Sub(started)).
		Msg("plan proposal generated")

	return &ProposeResponse{
		UserID:      req.UserID,
		GeneratedAt: s.now(),
		ModelUsed:   model,
		Proposal:    parseProposal(reply),
		DataSources: DataSources{
			UserProfile:        true,
			Medications:        len(pc.medications) > 0,
			Consultations:      len(pc.consultations) > 0,
			PreviousPlan:       pc.previous != nil,
			PreviousEvaluation: pc.evaluation != nil,
		},
	}, nil
}

func (s *Service) Models(ctx context.Context) ([]llm.Model, error) {
	return s.model.Models(ctx)
}
