package client

import (
	"context"

	"github.com/soudan/casebook/internal/platform/dates"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64, includeDeleted bool) (*User, error)
	Update(ctx context.Context, u *User) error
	SoftDelete(ctx context.Context, id int64) error
	// List evaluates age bounds against today in SQL.
	List(ctx context.Context, f ListFilter, today dates.Date, limit, offset int) ([]*User, int, error)
	StaffExists(ctx context.Context, staffID int64) (bool, error)
}
