// Package dashboard computes summary counts and deadline alerts across
// the case records. Nothing is cached; every call reads the database.
package dashboard

import "github.com/soudan/casebook/internal/platform/dates"

const (
	AgeGroupChild   = "0-17"
	AgeGroupYoung   = "18-39"
	AgeGroupMiddle  = "40-64"
	AgeGroupSenior  = "65+"
	AgeGroupUnknown = "不明"
)

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type Stats struct {
	TotalUsers           int            `json:"total_users"`
	ActivePlans          int            `json:"active_plans"`
	PendingApprovals     int            `json:"pending_approvals"`
	UpcomingMonitorings  int            `json:"upcoming_monitorings"`
	ConsultationByType   map[string]int `json:"consultation_by_type"`
	PlanStatus           map[string]int `json:"plan_status"`
	UsersByAgeGroup      map[string]int `json:"users_by_age_group"`
	MonthlyConsultations []MonthCount   `json:"monthly_consultations"`
}

type PlanAlert struct {
	PlanID        int64      `json:"plan_id"`
	UserID        int64      `json:"user_id"`
	UserName      string     `json:"user_name"`
	PlanNumber    string     `json:"plan_number"`
	EndDate       dates.Date `json:"end_date"`
	DaysRemaining int        `json:"days_remaining"`
	Type          string     `json:"type"`
}

type MonitoringAlert struct {
	MonitoringID       int64      `json:"monitoring_id"`
	PlanID             int64      `json:"plan_id"`
	UserID             int64      `json:"user_id"`
	UserName           string     `json:"user_name"`
	NextMonitoringDate dates.Date `json:"next_monitoring_date"`
	DaysOverdue        int        `json:"days_overdue"`
	Type               string     `json:"type"`
}

type NotebookAlert struct {
	NotebookID    int64      `json:"notebook_id"`
	UserID        int64      `json:"user_id"`
	UserName      string     `json:"user_name"`
	NotebookType  string     `json:"notebook_type"`
	RenewalDate   dates.Date `json:"renewal_date"`
	DaysRemaining int        `json:"days_remaining"`
	Type          string     `json:"type"`
}

type Alerts struct {
	PlanExpiringSoon  []PlanAlert       `json:"plan_expiring_soon"`
	MonitoringOverdue []MonitoringAlert `json:"monitoring_overdue"`
	NotebookExpiring  []NotebookAlert   `json:"notebook_expiring"`
	TotalAlerts       int               `json:"total_alerts"`
}
