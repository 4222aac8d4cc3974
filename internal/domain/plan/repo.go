package plan

import "context"

type Repository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id int64) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	UpdateApproval(ctx context.Context, p *Plan) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Plan, int, error)
	PlanNumberTaken(ctx context.Context, number string, excludeID int64) (bool, error)
}

// EvaluationRepository lists evaluations newest first.
type EvaluationRepository interface {
	Create(ctx context.Context, e *Evaluation) error
	GetByID(ctx context.Context, id int64) (*Evaluation, error)
	Update(ctx context.Context, e *Evaluation) error
	SoftDelete(ctx context.Context, id int64) error
	ListByPlan(ctx context.Context, planID int64) ([]*Evaluation, error)
}

type UserChecker interface {
	Exists(ctx context.Context, id int64) error
}
