package consultation

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

type consultationRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &consultationRepoPG{pool: pool}
}

func (r *consultationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const consultationFrom = `consultations c
	JOIN users u ON u.id = c.user_id
	JOIN staffs s ON s.id = c.staff_id`

const consultationCols = `c.id, c.user_id, c.staff_id, c.consultation_date, c.consultation_type,
	c.content, c.response, c.is_deleted, c.created_at, c.updated_at, u.name, s.name`

func (r *consultationRepoPG) scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation
	err := row.Scan(&c.ID, &c.UserID, &c.StaffID, &c.ConsultationDate, &c.ConsultationType,
		&c.Content, &c.Response, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt, &c.UserName, &c.StaffName)
	return &c, err
}

func (r *consultationRepoPG) Create(ctx context.Context, c *Consultation) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO consultations (user_id, staff_id, consultation_date, consultation_type, content, response)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		c.UserID, c.StaffID, c.ConsultationDate, c.ConsultationType, c.Content, c.Response,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *consultationRepoPG) GetByID(ctx context.Context, id int64) (*Consultation, error) {
	c, err := r.scanConsultation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+consultationCols+` FROM `+consultationFrom+` WHERE c.id = $1 AND c.is_deleted = FALSE`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("consultation", id)
	}
	return c, err
}

func (r *consultationRepoPG) Update(ctx context.Context, c *Consultation) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE consultations SET user_id=$2, staff_id=$3, consultation_date=$4, consultation_type=$5,
			content=$6, response=$7, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`,
		c.ID, c.UserID, c.StaffID, c.ConsultationDate, c.ConsultationType, c.Content, c.Response,
	).Scan(&c.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("consultation", c.ID)
	}
	return err
}

func (r *consultationRepoPG) SoftDelete(ctx context.Context, id int64) error {
	found, err := db.SoftDelete(ctx, r.conn(ctx), "consultations", id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("consultation", id)
	}
	return nil
}

func buildListQuery(f ListFilter) *search.Query {
	q := search.New(consultationFrom, consultationCols)
	q.NotDeleted("c.is_deleted", false)
	if f.UserID != nil {
		q.Eq("c.user_id", *f.UserID)
	}
	if f.StaffID != nil {
		q.Eq("c.staff_id", *f.StaffID)
	}
	if f.ConsultationType != "" {
		q.Eq("c.consultation_type", f.ConsultationType)
	}
	q.DateRange("c.consultation_date", f.DateFrom, f.DateTo)
	if f.Search != "" {
		q.Text(f.Search, "c.content", "c.response")
	}
	q.OrderBy("c.consultation_date DESC, c.id DESC")
	return q
}

func (r *consultationRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Consultation, int, error) {
	q := buildListQuery(f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count consultations: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list consultations: %w", err)
	}
	defer rows.Close()
	var items []*Consultation
	for rows.Next() {
		c, err := r.scanConsultation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *consultationRepoPG) StaffActive(ctx context.Context, staffID int64) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM staffs WHERE id = $1 AND is_active = TRUE)`, staffID).Scan(&ok)
	return ok, err
}
