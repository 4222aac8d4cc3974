package monitoring

import (
	"time"

	"github.com/soudan/casebook/internal/platform/dates"
)

// Monitoring is a periodic or ad-hoc review of how a plan is working.
type Monitoring struct {
	ID                 int64      `db:"id" json:"id"`
	PlanID             int64      `db:"plan_id" json:"plan_id"`
	UserID             int64      `db:"user_id" json:"user_id"`
	StaffID            int64      `db:"staff_id" json:"staff_id"`
	MonitoringDate     dates.Date `db:"monitoring_date" json:"monitoring_date"`
	MonitoringType     string     `db:"monitoring_type" json:"monitoring_type"`
	ServiceUsageStatus *string    `db:"service_usage_status" json:"service_usage_status"`
	GoalAchievement    *string    `db:"goal_achievement" json:"goal_achievement"`
	Satisfaction       *string    `db:"satisfaction" json:"satisfaction"`
	ChangesInNeeds     *string    `db:"changes_in_needs" json:"changes_in_needs"`
	IssuesAndConcerns  *string    `db:"issues_and_concerns" json:"issues_and_concerns"`
	FuturePolicy       *string    `db:"future_policy" json:"future_policy"`
	PlanRevisionNeeded bool       `db:"plan_revision_needed" json:"plan_revision_needed"`
	NextMonitoringDate dates.Date `db:"next_monitoring_date" json:"next_monitoring_date"`
	IsDeleted          bool       `db:"is_deleted" json:"is_deleted"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`

	UserName   string `db:"-" json:"user_name"`
	StaffName  string `db:"-" json:"staff_name"`
	PlanNumber string `db:"-" json:"plan_number"`
	IsOverdue  bool   `db:"-" json:"is_overdue"`
}

func (m *Monitoring) derive(today dates.Date) {
	m.IsOverdue = !m.NextMonitoringDate.IsZero() && today.After(m.NextMonitoringDate)
}

type Input struct {
	PlanID             *int64      `json:"plan_id"`
	UserID             *int64      `json:"user_id"`
	StaffID            *int64      `json:"staff_id"`
	MonitoringDate     *dates.Date `json:"monitoring_date"`
	MonitoringType     *string     `json:"monitoring_type"`
	ServiceUsageStatus *string     `json:"service_usage_status"`
	GoalAchievement    *string     `json:"goal_achievement"`
	Satisfaction       *string     `json:"satisfaction"`
	ChangesInNeeds     *string     `json:"changes_in_needs"`
	IssuesAndConcerns  *string     `json:"issues_and_concerns"`
	FuturePolicy       *string     `json:"future_policy"`
	PlanRevisionNeeded *bool       `json:"plan_revision_needed"`
	NextMonitoringDate *dates.Date `json:"next_monitoring_date"`
}

func (in *Input) apply(m *Monitoring) {
	if in.PlanID != nil {
		m.PlanID = *in.PlanID
	}
	if in.UserID != nil {
		m.UserID = *in.UserID
	}
	if in.StaffID != nil {
		m.StaffID = *in.StaffID
	}
	if in.MonitoringDate != nil {
		m.MonitoringDate = *in.MonitoringDate
	}
	if in.MonitoringType != nil {
		m.MonitoringType = *in.MonitoringType
	}
	if in.ServiceUsageStatus != nil {
		m.ServiceUsageStatus = in.ServiceUsageStatus
	}
	if in.GoalAchievement != nil {
		m.GoalAchievement = in.GoalAchievement
	}
	if in.Satisfaction != nil {
		m.Satisfaction = in.Satisfaction
	}
	if in.ChangesInNeeds != nil {
		m.ChangesInNeeds = in.ChangesInNeeds
	}
	if in.IssuesAndConcerns != nil {
		m.IssuesAndConcerns = in.IssuesAndConcerns
	}
	if in.FuturePolicy != nil {
		m.FuturePolicy = in.FuturePolicy
	}
	if in.PlanRevisionNeeded != nil {
		m.PlanRevisionNeeded = *in.PlanRevisionNeeded
	}
	if in.NextMonitoringDate != nil {
		m.NextMonitoringDate = *in.NextMonitoringDate
	}
}

type ListFilter struct {
	PlanID         *int64
	UserID         *int64
	StaffID        *int64
	MonitoringType string
	Search         string
}
