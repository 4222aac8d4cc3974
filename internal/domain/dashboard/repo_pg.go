package dashboard

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soudan/casebook/internal/domain/plan"
	"github.com/soudan/casebook/internal/platform/dates"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// repoPG always reads from the pool, never a request transaction, so the
// rollups can run concurrently.
type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) scalar(ctx context.Context, b sq.SelectBuilder) (int, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("dashboard count: %w", err)
	}
	return n, nil
}

func (r *repoPG) query(ctx context.Context, b sq.SelectBuilder) (pgx.Rows, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard query: %w", err)
	}
	return rows, nil
}

// grouped reads two-column (key, count) rows into a map.
func (r *repoPG) grouped(ctx context.Context, b sq.SelectBuilder) (map[string]int, error) {
	rows, err := r.query(ctx, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var k string
		var n int
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, rows.Err()
}

func countUsersQuery() sq.SelectBuilder {
	return psql.Select("COUNT(*)").From("users").Where(sq.Eq{"is_deleted": false})
}

func birthDatesQuery() sq.SelectBuilder {
	return psql.Select("birth_date").From("users").Where(sq.Eq{"is_deleted": false})
}

func planStatusQuery() sq.SelectBuilder {
	return psql.Select("approval_status", "COUNT(*)").From("plans").
		Where(sq.Eq{"is_deleted": false}).
		GroupBy("approval_status")
}

func monitoringsDueQuery(from, to dates.Date) sq.SelectBuilder {
	return psql.Select("COUNT(*)").From("monitorings m").
		Join("users u ON u.id = m.user_id").
		Where(sq.Eq{"m.is_deleted": false, "u.is_deleted": false}).
		Where(sq.GtOrEq{"m.next_monitoring_date": from}).
		Where(sq.LtOrEq{"m.next_monitoring_date": to})
}

func consultationTypeQuery() sq.SelectBuilder {
	return psql.Select("consultation_type", "COUNT(*)").From("consultations").
		Where(sq.Eq{"is_deleted": false}).
		GroupBy("consultation_type")
}

func monthlyConsultationsQuery(from, to dates.Date) sq.SelectBuilder {
	return psql.Select("to_char(consultation_date, 'YYYY-MM')", "COUNT(*)").From("consultations").
		Where(sq.Eq{"is_deleted": false}).
		Where(sq.GtOrEq{"consultation_date": from}).
		Where(sq.LtOrEq{"consultation_date": to}).
		GroupBy("1")
}

func expiringPlansQuery(from, to dates.Date) sq.SelectBuilder {
	return psql.Select("p.id", "p.user_id", "u.name", "p.plan_number", "p.end_date").
		From("plans p").
		Join("users u ON u.id = p.user_id").
		Where(sq.Eq{"p.is_deleted": false, "u.is_deleted": false}).
		Where(sq.NotEq{"p.approval_status": string(plan.StatusEnded)}).
		Where(sq.GtOrEq{"p.end_date": from}).
		Where(sq.LtOrEq{"p.end_date": to}).
		OrderBy("p.end_date ASC", "p.id ASC")
}

// overdueMonitoringsQuery looks only at the newest monitoring of each plan;
// older visits were superseded by it.
func overdueMonitoringsQuery(today dates.Date) sq.SelectBuilder {
	latest := sq.Select("DISTINCT ON (plan_id) id", "plan_id", "user_id", "next_monitoring_date").
		From("monitorings").
		Where("is_deleted = FALSE").
		OrderBy("plan_id", "monitoring_date DESC", "id DESC")
	return psql.Select("l.id", "l.plan_id", "l.user_id", "u.name", "l.next_monitoring_date").
		FromSelect(latest, "l").
		Join("users u ON u.id = l.user_id").
		Join("plans p ON p.id = l.plan_id").
		Where(sq.Eq{"u.is_deleted": false, "p.is_deleted": false}).
		Where(sq.Lt{"l.next_monitoring_date": today}).
		OrderBy("l.next_monitoring_date ASC", "l.id ASC")
}

func expiringNotebooksQuery(from, to dates.Date) sq.SelectBuilder {
	return psql.Select("n.id", "n.user_id", "u.name", "n.notebook_type", "n.renewal_date").
		From("notebooks n").
		Join("users u ON u.id = n.user_id").
		Where(sq.Eq{"n.is_deleted": false, "u.is_deleted": false}).
		Where(sq.GtOrEq{"n.renewal_date": from}).
		Where(sq.LtOrEq{"n.renewal_date": to}).
		OrderBy("n.renewal_date ASC", "n.id ASC")
}

func (r *repoPG) CountUsers(ctx context.Context) (int, error) {
	return r.scalar(ctx, countUsersQuery())
}

func (r *repoPG) BirthDates(ctx context.Context) ([]dates.Date, error) {
	rows, err := r.query(ctx, birthDatesQuery())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dates.Date
	for rows.Next() {
		var d dates.Date
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repoPG) PlanStatusCounts(ctx context.Context) (map[string]int, error) {
	return r.grouped(ctx, planStatusQuery())
}

func (r *repoPG) CountMonitoringsDue(ctx context.Context, from, to dates.Date) (int, error) {
	return r.scalar(ctx, monitoringsDueQuery(from, to))
}

func (r *repoPG) ConsultationTypeCounts(ctx context.Context) (map[string]int, error) {
	return r.grouped(ctx, consultationTypeQuery())
}

func (r *repoPG) MonthlyConsultations(ctx context.Context, from, to dates.Date) (map[string]int, error) {
	return r.grouped(ctx, monthlyConsultationsQuery(from, to))
}

func (r *repoPG) ExpiringPlans(ctx context.Context, from, to dates.Date) ([]PlanAlert, error) {
	rows, err := r.query(ctx, expiringPlansQuery(from, to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PlanAlert
	for rows.Next() {
		var a PlanAlert
		if err := rows.Scan(&a.PlanID, &a.UserID, &a.UserName, &a.PlanNumber, &a.EndDate); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repoPG) OverdueMonitorings(ctx context.Context, today dates.Date) ([]MonitoringAlert, error) {
	rows, err := r.query(ctx, overdueMonitoringsQuery(today))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MonitoringAlert
	for rows.Next() {
		var a MonitoringAlert
		if err := rows.Scan(&a.MonitoringID, &a.PlanID, &a.UserID, &a.UserName, &a.NextMonitoringDate); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repoPG) ExpiringNotebooks(ctx context.Context, from, to dates.Date) ([]NotebookAlert, error) {
	rows, err := r.query(ctx, expiringNotebooksQuery(from, to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []NotebookAlert
	for rows.Next() {
		var a NotebookAlert
		if err := rows.Scan(&a.NotebookID, &a.UserID, &a.UserName, &a.NotebookType, &a.RenewalDate); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
