package monitoring

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/db"
	"github.com/soudan/casebook/internal/platform/search"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type monitoringRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &monitoringRepoPG{pool: pool}
}

func (r *monitoringRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const monitoringFrom = `monitorings m
	JOIN users u ON u.id = m.user_id
	JOIN staffs s ON s.id = m.staff_id
	JOIN plans p ON p.id = m.plan_id`

const monitoringCols = `m.id, m.plan_id, m.user_id, m.staff_id, m.monitoring_date, m.monitoring_type,
	m.service_usage_status, m.goal_achievement, m.satisfaction, m.changes_in_needs,
	m.issues_and_concerns, m.future_policy, m.plan_revision_needed, m.next_monitoring_date,
	m.is_deleted, m.created_at, m.updated_at, u.name, s.name, p.plan_number`

func scanMonitoring(row pgx.Row) (*Monitoring, error) {
	var m Monitoring
	err := row.Scan(&m.ID, &m.PlanID, &m.UserID, &m.StaffID, &m.MonitoringDate, &m.MonitoringType,
		&m.ServiceUsageStatus, &m.GoalAchievement, &m.Satisfaction, &m.ChangesInNeeds,
		&m.IssuesAndConcerns, &m.FuturePolicy, &m.PlanRevisionNeeded, &m.NextMonitoringDate,
		&m.IsDeleted, &m.CreatedAt, &m.UpdatedAt, &m.UserName, &m.StaffName, &m.PlanNumber)
	return &m, err
}

func mapWriteErr(err error) error {
	switch {
	case db.IsForeignKeyViolation(err):
		return apperr.Validation("referenced plan, user or staff does not exist")
	case db.IsCheckViolation(err):
		return apperr.Validation("next_monitoring_date must be after monitoring_date")
	}
	return err
}

func (r *monitoringRepoPG) Create(ctx context.Context, m *Monitoring) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO monitorings (plan_id, user_id, staff_id, monitoring_date, monitoring_type,
			service_usage_status, goal_achievement, satisfaction, changes_in_needs,
			issues_and_concerns, future_policy, plan_revision_needed, next_monitoring_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING id, created_at, updated_at`,
		m.PlanID, m.UserID, m.StaffID, m.MonitoringDate, m.MonitoringType,
		m.ServiceUsageStatus, m.GoalAchievement, m.Satisfaction, m.ChangesInNeeds,
		m.IssuesAndConcerns, m.FuturePolicy, m.PlanRevisionNeeded, m.NextMonitoringDate,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return mapWriteErr(err)
}

func (r *monitoringRepoPG) GetByID(ctx context.Context, id int64) (*Monitoring, error) {
	m, err := scanMonitoring(r.conn(ctx).QueryRow(ctx,
		`SELECT `+monitoringCols+` FROM `+monitoringFrom+` WHERE m.id = $1 AND m.is_deleted = FALSE`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("monitoring", id)
	}
	return m, err
}

func (r *monitoringRepoPG) Update(ctx context.Context, m *Monitoring) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE monitorings SET plan_id=$2, user_id=$3, staff_id=$4, monitoring_date=$5, monitoring_type=$6,
			service_usage_status=$7, goal_achievement=$8, satisfaction=$9, changes_in_needs=$10,
			issues_and_concerns=$11, future_policy=$12, plan_revision_needed=$13, next_monitoring_date=$14,
			updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`,
		m.ID, m.PlanID, m.UserID, m.StaffID, m.MonitoringDate, m.MonitoringType,
		m.ServiceUsageStatus, m.GoalAchievement, m.Satisfaction, m.ChangesInNeeds,
		m.IssuesAndConcerns, m.FuturePolicy, m.PlanRevisionNeeded, m.NextMonitoringDate,
	).Scan(&m.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("monitoring", m.ID)
	}
	return mapWriteErr(err)
}

func (r *monitoringRepoPG) SoftDelete(ctx context.Context, id int64) error {
	found, err := db.SoftDelete(ctx, r.conn(ctx), "monitorings", id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("monitoring", id)
	}
	return nil
}

func buildListQuery(f ListFilter) *search.Query {
	q := search.New(monitoringFrom, monitoringCols)
	q.NotDeleted("m.is_deleted", false)
	if f.PlanID != nil {
		q.Eq("m.plan_id", *f.PlanID)
	}
	if f.UserID != nil {
		q.Eq("m.user_id", *f.UserID)
	}
	if f.StaffID != nil {
		q.Eq("m.staff_id", *f.StaffID)
	}
	if f.MonitoringType != "" {
		q.Eq("m.monitoring_type", f.MonitoringType)
	}
	if f.Search != "" {
		q.Text(f.Search, "u.name", "u.name_kana", "m.service_usage_status", "m.goal_achievement")
	}
	q.OrderBy("m.monitoring_date DESC, m.id DESC")
	return q
}

func (r *monitoringRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Monitoring, int, error) {
	q := buildListQuery(f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count monitorings: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list monitorings: %w", err)
	}
	defer rows.Close()
	var items []*Monitoring
	for rows.Next() {
		m, err := scanMonitoring(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
