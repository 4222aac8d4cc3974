package monitoring

import "context"

type Repository interface {
	Create(ctx context.Context, m *Monitoring) error
	GetByID(ctx context.Context, id int64) (*Monitoring, error)
	Update(ctx context.Context, m *Monitoring) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Monitoring, int, error)
}

type UserChecker interface {
	Exists(ctx context.Context, id int64) error
}

// PlanOwners resolves the user a plan belongs to, or NotFound.
type PlanOwners interface {
	OwnerOf(ctx context.Context, planID int64) (int64, error)
}
