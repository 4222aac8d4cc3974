package staff

import "context"

type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id int64) (*Staff, error)
	GetByUsername(ctx context.Context, username string) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Staff, int, error)
}
