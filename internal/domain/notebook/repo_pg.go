package notebook

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

type notebookRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &notebookRepoPG{pool: pool}
}

func (r *notebookRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const notebookCols = `id, user_id, notebook_type, grade, issue_date, renewal_date, notes,
	is_deleted, created_at, updated_at`

func (r *notebookRepoPG) scanNotebook(row pgx.Row) (*Notebook, error) {
	var n Notebook
	err := row.Scan(&n.ID, &n.UserID, &n.NotebookType, &n.Grade, &n.IssueDate, &n.RenewalDate,
		&n.Notes, &n.IsDeleted, &n.CreatedAt, &n.UpdatedAt)
	return &n, err
}

func (r *notebookRepoPG) Create(ctx context.Context, n *Notebook) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO notebooks (user_id, notebook_type, grade, issue_date, renewal_date, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		n.UserID, n.NotebookType, n.Grade, n.IssueDate, n.RenewalDate, n.Notes,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
}

func (r *notebookRepoPG) GetByID(ctx context.Context, id int64) (*Notebook, error) {
	n, err := r.scanNotebook(r.conn(ctx).QueryRow(ctx,
		`SELECT `+notebookCols+` FROM notebooks WHERE id = $1 AND is_deleted = FALSE`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("notebook", id)
	}
	return n, err
}

func (r *notebookRepoPG) Update(ctx context.Context, n *Notebook) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE notebooks SET user_id=$2, notebook_type=$3, grade=$4, issue_date=$5,
			renewal_date=$6, notes=$7, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`,
		n.ID, n.UserID, n.NotebookType, n.Grade, n.IssueDate, n.RenewalDate, n.Notes,
	).Scan(&n.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("notebook", n.ID)
	}
	return err
}

func (r *notebookRepoPG) SoftDelete(ctx context.Context, id int64) error {
	found, err := db.SoftDelete(ctx, r.conn(ctx), "notebooks", id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("notebook", id)
	}
	return nil
}

func (r *notebookRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Notebook, int, error) {
	q := search.New("notebooks", notebookCols)
	q.NotDeleted("is_deleted", false)
	if f.UserID != nil {
		q.Eq("user_id", *f.UserID)
	}
	if f.NotebookType != "" {
		q.Eq("notebook_type", f.NotebookType)
	}
	q.OrderBy("issue_date DESC NULLS LAST, id DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notebooks: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list notebooks: %w", err)
	}
	defer rows.Close()
	var items []*Notebook
	for rows.Next() {
		n, err := r.scanNotebook(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}
