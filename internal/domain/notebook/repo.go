package notebook

import "context"

type Repository interface {
	Create(ctx context.Context, n *Notebook) error
	GetByID(ctx context.Context, id int64) (*Notebook, error)
	Update(ctx context.Context, n *Notebook) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Notebook, int, error)
}

// UserChecker reports NotFound for absent or deleted users.
type UserChecker interface {
	Exists(ctx context.Context, id int64) error
}
