package assistant

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudan/casebook/internal/domain/client"
	"github.com/soudan/casebook/internal/domain/consultation"
	"github.com/soudan/casebook/internal/domain/medication"
	"github.com/soudan/casebook/internal/domain/plan"
	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/llm"
)

type stubUsers struct{}

func (stubUsers) Get(_ context.Context, id int64, _ bool) (*client.User, error) {
	if id != 1 && id != 2 {
		return nil, apperr.NotFound("user", id)
	}
	return &client.User{ID: id, Name: "山田 太郎"}, nil
}

type stubMeds struct {
	filter medication.ListFilter
}

func (s *stubMeds) ListForUser(_ context.Context, _ int64, f medication.ListFilter, _, _ int) ([]*medication.Medication, int, error) {
	s.filter = f
	return []*medication.Medication{{MedicationName: "デパケン"}}, 1, nil
}

type stubConsultations struct {
	limit int
}

func (s *stubConsultations) ListForUser(_ context.Context, _ int64, limit, _ int) ([]*consultation.Consultation, int, error) {
	s.limit = limit
	return nil, 0, nil
}

type stubPlans struct{}

func (stubPlans) Get(_ context.Context, id int64) (*plan.Plan, error) {
	if id == 20 {
		return &plan.Plan{ID: 20, UserID: 2}, nil
	}
	return &plan.Plan{ID: id, UserID: 1}, nil
}

func (stubPlans) LatestForUser(_ context.Context, userID int64) (*plan.Plan, error) {
	if userID == 2 {
		return nil, nil
	}
	return &plan.Plan{ID: 10, UserID: userID}, nil
}

func (stubPlans) LatestEvaluation(_ context.Context, planID int64) (*plan.Evaluation, error) {
	if planID == 10 {
		return &plan.Evaluation{PlanID: 10, AchievementStatus: "達成"}, nil
	}
	return nil, nil
}

type fakeModel struct {
	reply    string
	err      error
	model    string
	messages []llm.Message
}

func (m *fakeModel) Chat(_ context.Context, model string, messages []llm.Message) (string, error) {
	m.model, m.messages = model, messages
	return m.reply, m.err
}

func (m *fakeModel) Models(context.Context) ([]llm.Model, error) {
	return []llm.Model{{Name: "llama3:latest"}}, nil
}

func (m *fakeModel) DefaultModel() string { return "llama3" }

func newTestService(m *fakeModel) (*Service, *stubMeds, *stubConsultations) {
	meds := &stubMeds{}
	cons := &stubConsultations{}
	src := Sources{Users: stubUsers{}, Medications: meds, Consultations: cons, Plans: stubPlans{}}
	return NewService(src, m, zerolog.Nop()), meds, cons
}

func TestService_Propose(t *testing.T) {
	m := &fakeModel{reply: "【長期目標】\n就労する\n【推奨サービス】\n1. 就労移行支援 - 訓練"}
	svc, meds, cons := newTestService(m)

	resp, err := svc.Propose(context.Background(), ProposeRequest{UserID: 1})
	require.NoError(t, err)

	assert.Equal(t, "llama3", resp.ModelUsed)
	assert.Equal(t, "就労する", resp.Proposal.LongTermGoal)
	assert.Equal(t, []string{"1. 就労移行支援 - 訓練"}, resp.Proposal.RecommendedServices)
	assert.Equal(t, DataSources{UserProfile: true, Medications: true, PreviousPlan: true, PreviousEvaluation: true}, resp.DataSources)

	require.NotNil(t, meds.filter.IsCurrent)
	assert.True(t, *meds.filter.IsCurrent, "only current medications go into the prompt")
	assert.Equal(t, recentConsultations, cons.limit)

	require.Len(t, m.messages, 2)
	assert.Equal(t, "system", m.messages[0].Role)
	assert.True(t, strings.HasSuffix(m.messages[1].Content, replyInJapanese))
}

func TestService_Propose_ExplicitPlanMustBelongToUser(t *testing.T) {
	svc, _, _ := newTestService(&fakeModel{reply: "x"})
	prev := int64(20)
	_, err := svc.Propose(context.Background(), ProposeRequest{UserID: 1, PreviousPlanID: &prev})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestService_Propose_NoPreviousPlan(t *testing.T) {
	m := &fakeModel{reply: "x"}
	svc, _, _ := newTestService(m)
	resp, err := svc.Propose(context.Background(), ProposeRequest{UserID: 2, Model: "gemma2"})
	require.NoError(t, err)
	assert.Equal(t, "gemma2", m.model)
	assert.False(t, resp.DataSources.PreviousPlan)
	assert.False(t, resp.DataSources.PreviousEvaluation)
}

func TestService_Propose_Errors(t *testing.T) {
	svc, _, _ := newTestService(&fakeModel{})
	_, err := svc.Propose(context.Background(), ProposeRequest{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Propose(context.Background(), ProposeRequest{UserID: 99})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	upstream := apperr.Upstream("inference server unreachable", errors.New("dial tcp: connection refused"))
	svc, _, _ = newTestService(&fakeModel{err: upstream})
	_, err = svc.Propose(context.Background(), ProposeRequest{UserID: 1})
	assert.Equal(t, http.StatusBadGateway, apperr.HTTPStatus(err))
}

func TestHandler_Models(t *testing.T) {
	svc, _, _ := newTestService(&fakeModel{})
	h := NewHandler(svc)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ai/models/available", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Models(e.NewContext(req, rec)))
	assert.JSONEq(t, `{"models":[{"name":"llama3:latest","size":"","modified":""}]}`, rec.Body.String())
}

func TestHandler_Propose(t *testing.T) {
	svc, _, _ := newTestService(&fakeModel{reply: "【短期目標】\n通所"})
	h := NewHandler(svc)
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/plans/propose", strings.NewReader(`{"user_id":1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	require.NoError(t, h.Propose(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"short_term_goal":"通所"`)
}
