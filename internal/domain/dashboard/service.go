package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/soudan/casebook/internal/domain/plan"
	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/dates"
)

const (
	DefaultAlertDays = 90
	MaxAlertDays     = 365

	statsMonths = 6
)

var planStatuses = []plan.Status{plan.StatusDraft, plan.StatusApproved, plan.StatusActive, plan.StatusEnded}

type Service struct {
	repo  Repository
	clock dates.Clock
}

func NewService(repo Repository, clock dates.Clock) *Service {
	return &Service{repo: repo, clock: clock}
}

// Stats runs the independent rollups concurrently; the first failure
// cancels the rest.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	today := dates.Today(s.clock)
	first := dates.MonthsBack(today, statsMonths-1)

	var (
		st       = &Stats{}
		births   []dates.Date
		statuses map[string]int
		monthly  map[string]int
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.TotalUsers, err = s.repo.CountUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		births, err = s.repo.BirthDates(ctx)
		return err
	})
	g.Go(func() (err error) {
		statuses, err = s.repo.PlanStatusCounts(ctx)
		return err
	})
	g.Go(func() (err error) {
		st.UpcomingMonitorings, err = s.repo.CountMonitoringsDue(ctx, dates.StartOfMonth(today), dates.EndOfMonth(today))
		return err
	})
	g.Go(func() (err error) {
		st.ConsultationByType, err = s.repo.ConsultationTypeCounts(ctx)
		return err
	})
	g.Go(func() (err error) {
		monthly, err = s.repo.MonthlyConsultations(ctx, first, dates.EndOfMonth(today))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st.PlanStatus = make(map[string]int, len(planStatuses))
	for _, code := range planStatuses {
		st.PlanStatus[string(code)] = 0
	}
	for k, n := range statuses {
		st.PlanStatus[k] = n
	}
	st.ActivePlans = st.PlanStatus[string(plan.StatusActive)]
	st.PendingApprovals = st.PlanStatus[string(plan.StatusDraft)]
	if st.ConsultationByType == nil {
		st.ConsultationByType = map[string]int{}
	}
	st.UsersByAgeGroup = ageGroups(births, today)

	for i := statsMonths - 1; i >= 0; i-- {
		m := dates.MonthsBack(today, i)
		st.MonthlyConsultations = append(st.MonthlyConsultations, MonthCount{
			Month: m.Format("2006年01月"),
			Count: monthly[m.Format("2006-01")],
		})
	}
	return st, nil
}

func ageGroups(births []dates.Date, today dates.Date) map[string]int {
	groups := map[string]int{
		AgeGroupChild:   0,
		AgeGroupYoung:   0,
		AgeGroupMiddle:  0,
		AgeGroupSenior:  0,
		AgeGroupUnknown: 0,
	}
	for _, b := range births {
		if b.IsZero() {
			groups[AgeGroupUnknown]++
			continue
		}
		switch age := dates.Age(b, today); {
		case age < 18:
			groups[AgeGroupChild]++
		case age < 40:
			groups[AgeGroupYoung]++
		case age < 65:
			groups[AgeGroupMiddle]++
		default:
			groups[AgeGroupSenior]++
		}
	}
	return groups
}

// Alerts lists deadlines falling within the next days days (inclusive of
// today) and monitorings already past their next date.
func (s *Service) Alerts(ctx context.Context, days int) (*Alerts, error) {
	if days < 1 || days > MaxAlertDays {
		return nil, apperr.Validation("days must be between 1 and %d", MaxAlertDays)
	}
	today := dates.Today(s.clock)
	until := today.AddDays(days)

	a := &Alerts{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		a.PlanExpiringSoon, err = s.repo.ExpiringPlans(ctx, today, until)
		return err
	})
	g.Go(func() (err error) {
		a.MonitoringOverdue, err = s.repo.OverdueMonitorings(ctx, today)
		return err
	})
	g.Go(func() (err error) {
		a.NotebookExpiring, err = s.repo.ExpiringNotebooks(ctx, today, until)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if a.PlanExpiringSoon == nil {
		a.PlanExpiringSoon = []PlanAlert{}
	}
	for i := range a.PlanExpiringSoon {
		p := &a.PlanExpiringSoon[i]
		p.DaysRemaining = today.DaysUntil(p.EndDate)
		p.Type = "plan_expiring"
	}
	if a.MonitoringOverdue == nil {
		a.MonitoringOverdue = []MonitoringAlert{}
	}
	for i := range a.MonitoringOverdue {
		m := &a.MonitoringOverdue[i]
		m.DaysOverdue = m.NextMonitoringDate.DaysUntil(today)
		m.Type = "monitoring_overdue"
	}
	if a.NotebookExpiring == nil {
		a.NotebookExpiring = []NotebookAlert{}
	}
	for i := range a.NotebookExpiring {
		n := &a.NotebookExpiring[i]
		n.DaysRemaining = today.DaysUntil(n.RenewalDate)
		n.Type = "notebook_expiring"
	}
	a.TotalAlerts = len(a.PlanExpiringSoon) + len(a.MonitoringOverdue) + len(a.NotebookExpiring)
	return a, nil
}
