package consultation

import "context"

type Repository interface {
	Create(ctx context.Context, c *Consultation) error
	GetByID(ctx context.Context, id int64) (*Consultation, error)
	Update(ctx context.Context, c *Consultation) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Consultation, int, error)
	StaffActive(ctx context.Context, staffID int64) (bool, error)
}

// UserChecker reports NotFound for absent or deleted users.
type UserChecker interface {
	Exists(ctx context.Context, id int64) error
}
