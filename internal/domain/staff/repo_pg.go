package staff

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

type staffRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const staffCols = `id, username, password_hash, name, email, role, is_active, created_at, updated_at`

func (r *staffRepoPG) scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.Username, &s.PasswordHash, &s.Name, &s.Email,
		&s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *staffRepoPG) Create(ctx context.Context, s *Staff) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO staffs (username, password_hash, name, email, role, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		s.Username, s.PasswordHash, s.Name, s.Email, s.Role, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("username %q is already taken", s.Username)
	}
	return err
}

func (r *staffRepoPG) GetByID(ctx context.Context, id int64) (*Staff, error) {
	s, err := r.scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staffs WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("staff", id)
	}
	return s, err
}

func (r *staffRepoPG) GetByUsername(ctx context.Context, username string) (*Staff, error) {
	s, err := r.scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staffs WHERE username = $1`, username))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("staff", username)
	}
	return s, err
}

func (r *staffRepoPG) Update(ctx context.Context, s *Staff) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE staffs SET name=$2, email=$3, role=$4, is_active=$5, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		s.ID, s.Name, s.Email, s.Role, s.IsActive,
	).Scan(&s.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("staff", s.ID)
	}
	return err
}

func (r *staffRepoPG) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE staffs SET password_hash=$2, updated_at=NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("staff", id)
	}
	return nil
}

func (r *staffRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Staff, int, error) {
	q := search.New("staffs", staffCols)
	if f.Search != "" {
		q.Text(f.Search, "name", "username", "email")
	}
	if f.Role != "" {
		q.Eq("role", f.Role)
	}
	if f.IsActive != nil {
		q.Eq("is_active", *f.IsActive)
	}
	q.OrderBy("id ASC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count staffs: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list staffs: %w", err)
	}
	defer rows.Close()
	var items []*Staff
	for rows.Next() {
		s, err := r.scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}
