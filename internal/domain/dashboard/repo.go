package dashboard

import (
	"context"

	"github.com/soudan/casebook/internal/platform/dates"
)

// Repository runs the read-only rollups. Date ranges are inclusive.
type Repository interface {
	CountUsers(ctx context.Context) (int, error)
	BirthDates(ctx context.Context) ([]dates.Date, error)
	PlanStatusCounts(ctx context.Context) (map[string]int, error)
	CountMonitoringsDue(ctx context.Context, from, to dates.Date) (int, error)
	ConsultationTypeCounts(ctx context.Context) (map[string]int, error)
	// MonthlyConsultations is keyed by "YYYY-MM".
	MonthlyConsultations(ctx context.Context, from, to dates.Date) (map[string]int, error)

	ExpiringPlans(ctx context.Context, from, to dates.Date) ([]PlanAlert, error)
	OverdueMonitorings(ctx context.Context, today dates.Date) ([]MonitoringAlert, error)
	ExpiringNotebooks(ctx context.Context, from, to dates.Date) ([]NotebookAlert, error)
}
