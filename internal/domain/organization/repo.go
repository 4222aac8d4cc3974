package organization

import "context"

type Repository interface {
	Create(ctx context.Context, o *Organization) error
	GetByID(ctx context.Context, id int64) (*Organization, error)
	Update(ctx context.Context, o *Organization) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Organization, int, error)
}

type LinkRepository interface {
	Create(ctx context.Context, l *Link) error
	GetByID(ctx context.Context, id int64) (*Link, error)
	Update(ctx context.Context, l *Link) error
	SoftDelete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]*Link, error)
	ListByOrganization(ctx context.Context, orgID int64) ([]*Link, error)
}

// UserChecker reports NotFound for absent or deleted users.
type UserChecker interface {
	Exists(ctx context.Context, id int64) error
}
