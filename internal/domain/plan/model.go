package plan

import (
	"time"

	"github.com/soudan/casebook/internal/platform/dates"
)

const (
	TypeInitial = "初回"
	TypeRenewal = "更新"
)

// ServiceItem is one recommended service line, stored in plans.services.
type ServiceItem struct {
	ServiceType string `json:"service_type"`
	Provider    string `json:"provider"`
	Frequency   string `json:"frequency"`
	Hours       string `json:"hours"`
	Purpose     string `json:"purpose"`
}

// Plan is a support plan (サービス等利用計画) for one user.
type Plan struct {
	ID                  int64         `db:"id" json:"id"`
	UserID              int64         `db:"user_id" json:"user_id"`
	StaffID             int64         `db:"staff_id" json:"staff_id"`
	PlanType            string        `db:"plan_type" json:"plan_type"`
	PlanNumber          string        `db:"plan_number" json:"plan_number"`
	CreatedDate         dates.Date    `db:"created_date" json:"created_date"`
	StartDate           dates.Date    `db:"start_date" json:"start_date"`
	EndDate             dates.Date    `db:"end_date" json:"end_date"`
	CurrentSituation    *string       `db:"current_situation" json:"current_situation"`
	HopesAndNeeds       *string       `db:"hopes_and_needs" json:"hopes_and_needs"`
	SupportPolicy       *string       `db:"support_policy" json:"support_policy"`
	LongTermGoal        *string       `db:"long_term_goal" json:"long_term_goal"`
	LongTermGoalPeriod  *string       `db:"long_term_goal_period" json:"long_term_goal_period"`
	ShortTermGoal       *string       `db:"short_term_goal" json:"short_term_goal"`
	ShortTermGoalPeriod *string       `db:"short_term_goal_period" json:"short_term_goal_period"`
	Services            []ServiceItem `db:"services" json:"services"`
	ApprovalStatus      Status        `db:"approval_status" json:"approval_status"`
	ApprovalDate        dates.Date    `db:"approval_date" json:"approval_date"`
	IsDeleted           bool          `db:"is_deleted" json:"is_deleted"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at" json:"updated_at"`

	UserName            string `db:"-" json:"user_name"`
	StaffName           string `db:"-" json:"staff_name"`
	ApprovalStatusLabel string `db:"-" json:"approval_status_label"`
	IsActive            bool   `db:"-" json:"is_active"`
	CanEdit             bool   `db:"-" json:"can_edit"`
}

// derive fills the fields computed from the stored row.
func (p *Plan) derive(today dates.Date) {
	p.ApprovalStatusLabel = p.ApprovalStatus.Label()
	p.IsActive = !p.StartDate.After(today) && !p.EndDate.Before(today)
	p.CanEdit = p.ApprovalStatus == StatusDraft
	if p.Services == nil {
		p.Services = []ServiceItem{}
	}
}

// Input carries the editable plan fields. Approval fields are set only
// through Approve.
type Input struct {
	UserID              *int64         `json:"user_id"`
	StaffID             *int64         `json:"staff_id"`
	PlanType            *string        `json:"plan_type"`
	PlanNumber          *string        `json:"plan_number"`
	CreatedDate         *dates.Date    `json:"created_date"`
	StartDate           *dates.Date    `json:"start_date"`
	EndDate             *dates.Date    `json:"end_date"`
	CurrentSituation    *string        `json:"current_situation"`
	HopesAndNeeds       *string        `json:"hopes_and_needs"`
	SupportPolicy       *string        `json:"support_policy"`
	LongTermGoal        *string        `json:"long_term_goal"`
	LongTermGoalPeriod  *string        `json:"long_term_goal_period"`
	ShortTermGoal       *string        `json:"short_term_goal"`
	ShortTermGoalPeriod *string        `json:"short_term_goal_period"`
	Services            *[]ServiceItem `json:"services"`
}

func (in *Input) apply(p *Plan) {
	if in.UserID != nil {
		p.UserID = *in.UserID
	}
	if in.StaffID != nil {
		p.StaffID = *in.StaffID
	}
	if in.PlanType != nil {
		p.PlanType = *in.PlanType
	}
	if in.PlanNumber != nil {
		p.PlanNumber = *in.PlanNumber
	}
	if in.CreatedDate != nil {
		p.CreatedDate = *in.CreatedDate
	}
	if in.StartDate != nil {
		p.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		p.EndDate = *in.EndDate
	}
	if in.CurrentSituation != nil {
		p.CurrentSituation = in.CurrentSituation
	}
	if in.HopesAndNeeds != nil {
		p.HopesAndNeeds = in.HopesAndNeeds
	}
	if in.SupportPolicy != nil {
		p.SupportPolicy = in.SupportPolicy
	}
	if in.LongTermGoal != nil {
		p.LongTermGoal = in.LongTermGoal
	}
	if in.LongTermGoalPeriod != nil {
		p.LongTermGoalPeriod = in.LongTermGoalPeriod
	}
	if in.ShortTermGoal != nil {
		p.ShortTermGoal = in.ShortTermGoal
	}
	if in.ShortTermGoalPeriod != nil {
		p.ShortTermGoalPeriod = in.ShortTermGoalPeriod
	}
	if in.Services != nil {
		p.Services = *in.Services
	}
}

type ApproveRequest struct {
	ApprovalStatus Status      `json:"approval_status"`
	ApprovalDate   *dates.Date `json:"approval_date"`
}

type ListFilter struct {
	UserID         *int64
	StaffID        *int64
	ApprovalStatus Status
	Search         string
}
