package medication

import "context"

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, search string, limit, offset int) ([]*Doctor, int, error)
}

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id int64) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Medication, int, error)
	AddChange(ctx context.Context, c *Change) error
	ListChanges(ctx context.Context, medicationID int64) ([]*Change, error)
}

type UserChecker interface {
	Exists(ctx context.Context, id int64) error
}

// Transactor runs fn in one database transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
