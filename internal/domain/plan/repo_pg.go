package plan

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

func connFor(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// mapWriteErr turns constraint violations into client errors.
func mapWriteErr(err error, number string) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err, "plans_plan_number_key"):
		return apperr.Conflict("plan_number %q is already in use", number)
	case db.IsForeignKeyViolation(err):
		return apperr.Validation("referenced user or staff does not exist")
	case db.IsCheckViolation(err):
		return apperr.Validation("end_date must be after start_date")
	}
	return err
}

// -- Plans --

type planRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &planRepoPG{pool: pool}
}

const planFrom = `plans p
	JOIN users u ON u.id = p.user_id
	JOIN staffs s ON s.id = p.staff_id`

const planCols = `p.id, p.user_id, p.staff_id, p.plan_type, p.plan_number, p.created_date,
	p.start_date, p.end_date, p.current_situation, p.hopes_and_needs, p.support_policy,
	p.long_term_goal, p.long_term_goal_period, p.short_term_goal, p.short_term_goal_period,
	p.services, p.approval_status, p.approval_date, p.is_deleted, p.created_at, p.updated_at,
	u.name, s.name`

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.UserID, &p.StaffID, &p.PlanType, &p.PlanNumber, &p.CreatedDate,
		&p.StartDate, &p.EndDate, &p.CurrentSituation, &p.HopesAndNeeds, &p.SupportPolicy,
		&p.LongTermGoal, &p.LongTermGoalPeriod, &p.ShortTermGoal, &p.ShortTermGoalPeriod,
		&p.Services, &p.ApprovalStatus, &p.ApprovalDate, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt,
		&p.UserName, &p.StaffName)
	return &p, err
}

func (r *planRepoPG) Create(ctx context.Context, p *Plan) error {
	err := connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO plans (user_id, staff_id, plan_type, plan_number, created_date, start_date, end_date,
			current_situation, hopes_and_needs, support_policy, long_term_goal, long_term_goal_period,
			short_term_goal, short_term_goal_period, services, approval_status, approval_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING id, created_at, updated_at`,
		p.UserID, p.StaffID, p.PlanType, p.PlanNumber, p.CreatedDate, p.StartDate, p.EndDate,
		p.CurrentSituation, p.HopesAndNeeds, p.SupportPolicy, p.LongTermGoal, p.LongTermGoalPeriod,
		p.ShortTermGoal, p.ShortTermGoalPeriod, p.Services, p.ApprovalStatus, p.ApprovalDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapWriteErr(err, p.PlanNumber)
}

func (r *planRepoPG) GetByID(ctx context.Context, id int64) (*Plan, error) {
	p, err := scanPlan(connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+planCols+` FROM `+planFrom+` WHERE p.id = $1 AND p.is_deleted = FALSE`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("plan", id)
	}
	return p, err
}

func (r *planRepoPG) Update(ctx context.Context, p *Plan) error {
	err := connFor(ctx, r.pool).QueryRow(ctx, `
		UPDATE plans SET user_id=$2, staff_id=$3, plan_type=$4, plan_number=$5, created_date=$6,
			start_date=$7, end_date=$8, current_situation=$9, hopes_and_needs=$10, support_policy=$11,
			long_term_goal=$12, long_term_goal_period=$13, short_term_goal=$14, short_term_goal_period=$15,
			services=$16, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`,
		p.ID, p.UserID, p.StaffID, p.PlanType, p.PlanNumber, p.CreatedDate,
		p.StartDate, p.EndDate, p.CurrentSituation, p.HopesAndNeeds, p.SupportPolicy,
		p.LongTermGoal, p.LongTermGoalPeriod, p.ShortTermGoal, p.ShortTermGoalPeriod, p.Services,
	).Scan(&p.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("plan", p.ID)
	}
	return mapWriteErr(err, p.PlanNumber)
}

func (r *planRepoPG) UpdateApproval(ctx context.Context, p *Plan) error {
	err := connFor(ctx, r.pool).QueryRow(ctx, `
		UPDATE plans SET approval_status=$2, approval_date=$3, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`,
		p.ID, p.ApprovalStatus, p.ApprovalDate,
	).Scan(&p.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("plan", p.ID)
	}
	return err
}

func (r *planRepoPG) SoftDelete(ctx context.Context, id int64) error {
	found, err := db.SoftDelete(ctx, connFor(ctx, r.pool), "plans", id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("plan", id)
	}
	return nil
}

func buildListQuery(f ListFilter) *search.Query {
	q := search.New(planFrom, planCols)
	q.NotDeleted("p.is_deleted", false)
	if f.UserID != nil {
		q.Eq("p.user_id", *f.UserID)
	}
	if f.StaffID != nil {
		q.Eq("p.staff_id", *f.StaffID)
	}
	if f.ApprovalStatus != "" {
		q.Eq("p.approval_status", string(f.ApprovalStatus))
	}
	if f.Search != "" {
		q.Text(f.Search, "u.name", "u.name_kana", "p.plan_number", "p.long_term_goal", "p.short_term_goal")
	}
	q.OrderBy("p.created_date DESC, p.id DESC")
	return q
}

func (r *planRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Plan, int, error) {
	q := buildListQuery(f)
	conn := connFor(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count plans: %w", err)
	}
	rows, err := conn.Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()
	var items []*Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *planRepoPG) PlanNumberTaken(ctx context.Context, number string, excludeID int64) (bool, error) {
	var taken bool
	err := connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM plans WHERE plan_number = $1 AND id <> $2)`, number, excludeID).Scan(&taken)
	return taken, err
}

// -- Evaluations --

type evaluationRepoPG struct{ pool *pgxpool.Pool }

func NewEvaluationRepoPG(pool *pgxpool.Pool) EvaluationRepository {
	return &evaluationRepoPG{pool: pool}
}

const evaluationCols = `e.id, e.plan_id, e.user_id, e.staff_id, e.evaluation_date, e.achievement_status,
	e.achievement_details, e.goal_1_achievement, e.goal_1_notes, e.goal_2_achievement, e.goal_2_notes,
	e.goal_3_achievement, e.goal_3_notes, e.overall_evaluation, e.challenges, e.next_actions,
	e.is_deleted, e.created_at, e.updated_at, s.name`

func scanEvaluation(row pgx.Row) (*Evaluation, error) {
	var e Evaluation
	err := row.Scan(&e.ID, &e.PlanID, &e.UserID, &e.StaffID, &e.EvaluationDate, &e.AchievementStatus,
		&e.AchievementDetails, &e.Goal1Achievement, &e.Goal1Notes, &e.Goal2Achievement, &e.Goal2Notes,
		&e.Goal3Achievement, &e.Goal3Notes, &e.OverallEvaluation, &e.Challenges, &e.NextActions,
		&e.IsDeleted, &e.CreatedAt, &e.UpdatedAt, &e.StaffName)
	return &e, err
}

func (r *evaluationRepoPG) Create(ctx context.Context, e *Evaluation) error {
	err := connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO plan_evaluations (plan_id, user_id, staff_id, evaluation_date, achievement_status,
			achievement_details, goal_1_achievement, goal_1_notes, goal_2_achievement, goal_2_notes,
			goal_3_achievement, goal_3_notes, overall_evaluation, challenges, next_actions)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id, created_at, updated_at`,
		e.PlanID, e.UserID, e.StaffID, e.EvaluationDate, e.AchievementStatus,
		e.AchievementDetails, e.Goal1Achievement, e.Goal1Notes, e.Goal2Achievement, e.Goal2Notes,
		e.Goal3Achievement, e.Goal3Notes, e.OverallEvaluation, e.Challenges, e.NextActions,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if db.IsForeignKeyViolation(err) {
		return apperr.Validation("referenced staff does not exist")
	}
	return err
}

func (r *evaluationRepoPG) GetByID(ctx context.Context, id int64) (*Evaluation, error) {
	e, err := scanEvaluation(connFor(ctx, r.pool).QueryRow(ctx, `
		SELECT `+evaluationCols+` FROM plan_evaluations e JOIN staffs s ON s.id = e.staff_id
		WHERE e.id = $1 AND e.is_deleted = FALSE`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("evaluation", id)
	}
	return e, err
}

func (r *evaluationRepoPG) Update(ctx context.Context, e *Evaluation) error {
	err := connFor(ctx, r.pool).QueryRow(ctx, `
		UPDATE plan_evaluations SET staff_id=$2, evaluation_date=$3, achievement_status=$4,
			achievement_details=$5, goal_1_achievement=$6, goal_1_notes=$7, goal_2_achievement=$8,
			goal_2_notes=$9, goal_3_achievement=$10, goal_3_notes=$11, overall_evaluation=$12,
			challenges=$13, next_actions=$14, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`,
		e.ID, e.StaffID, e.EvaluationDate, e.AchievementStatus,
		e.AchievementDetails, e.Goal1Achievement, e.Goal1Notes, e.Goal2Achievement,
		e.Goal2Notes, e.Goal3Achievement, e.Goal3Notes, e.OverallEvaluation,
		e.Challenges, e.NextActions,
	).Scan(&e.UpdatedAt)
	switch {
	case db.IsNoRows(err):
		return apperr.NotFound("evaluation", e.ID)
	case db.IsForeignKeyViolation(err):
		return apperr.Validation("referenced staff does not exist")
	}
	return err
}

func (r *evaluationRepoPG) SoftDelete(ctx context.Context, id int64) error {
	found, err := db.SoftDelete(ctx, connFor(ctx, r.pool), "plan_evaluations", id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("evaluation", id)
	}
	return nil
}

func (r *evaluationRepoPG) ListByPlan(ctx context.Context, planID int64) ([]*Evaluation, error) {
	rows, err := connFor(ctx, r.pool).Query(ctx, `
		SELECT `+evaluationCols+` FROM plan_evaluations e JOIN staffs s ON s.id = e.staff_id
		WHERE e.plan_id = $1 AND e.is_deleted = FALSE
		ORDER BY e.evaluation_date DESC, e.id DESC`, planID)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()
	var items []*Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
