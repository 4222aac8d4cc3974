package organization

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

func connFor(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

// =========== Organization Repository ===========

type orgRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &orgRepoPG{pool: pool}
}

const orgCols = `id, name, organization_type, postal_code, address, phone, fax, email,
	contact_person, contact_person_phone, notes, is_deleted, created_at, updated_at`

func (r *orgRepoPG) scanOrg(row pgx.Row) (*Organization, error) {
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.OrganizationType, &o.PostalCode, &o.Address, &o.Phone,
		&o.Fax, &o.Email, &o.ContactPerson, &o.ContactPersonPhone, &o.Notes,
		&o.IsDeleted, &o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *orgRepoPG) Create(ctx context.Context, o *Organization) error {
	return connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO organizations (name, organization_type, postal_code, address, phone, fax, email,
			contact_person, contact_person_phone, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at`,
		o.Name, o.OrganizationType, o.PostalCode, o.Address, o.Phone, o.Fax, o.Email,
		o.ContactPerson, o.ContactPersonPhone, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *orgRepoPG) GetByID(ctx context.Context, id int64) (*Organization, error) {
	o, err := r.scanOrg(connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orgCols+` FROM organizations WHERE id = $1 AND is_deleted = FALSE`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("organization", id)
	}
	return o, err
}

func (r *orgRepoPG) Update(ctx context.Context, o *Organization) error {
	err := connFor(ctx, r.pool).QueryRow(ctx, `
		UPDATE organizations SET name=$2, organization_type=$3, postal_code=$4, address=$5, phone=$6,
			fax=$7, email=$8, contact_person=$9, contact_person_phone=$10, notes=$11, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`,
		o.ID, o.Name, o.OrganizationType, o.PostalCode, o.Address, o.Phone,
		o.Fax, o.Email, o.ContactPerson, o.ContactPersonPhone, o.Notes,
	).Scan(&o.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("organization", o.ID)
	}
	return err
}

func (r *orgRepoPG) SoftDelete(ctx context.Context, id int64) error {
	found, err := db.SoftDelete(ctx, connFor(ctx, r.pool), "organizations", id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("organization", id)
	}
	return nil
}

func (r *orgRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Organization, int, error) {
	q := search.New("organizations", orgCols)
	q.NotDeleted("is_deleted", false)
	if f.Search != "" {
		q.Text(f.Search, "name", "contact_person")
	}
	if f.OrganizationType != "" {
		q.Eq("organization_type", f.OrganizationType)
	}
	q.OrderBy("name ASC, id ASC")

	conn := connFor(ctx, r.pool)
	var total int
	if err := conn.QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count organizations: %w", err)
	}
	rows, err := conn.Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()
	var items []*Organization
	for rows.Next() {
		o, err := r.scanOrg(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, rows.Err()
}

// =========== User-Organization Link Repository ===========

type linkRepoPG struct{ pool *pgxpool.Pool }

func NewLinkRepoPG(pool *pgxpool.Pool) LinkRepository {
	return &linkRepoPG{pool: pool}
}

const linkFrom = `user_organizations l
	JOIN users u ON u.id = l.user_id
	JOIN organizations o ON o.id = l.organization_id`

const linkCols = `l.id, l.user_id, l.organization_id, l.relationship_type, l.start_date, l.end_date,
	l.frequency, l.notes, l.is_deleted, l.created_at, l.updated_at,
	u.name, o.name, o.organization_type`

func (r *linkRepoPG) scanLink(row pgx.Row) (*Link, error) {
	var l Link
	err := row.Scan(&l.ID, &l.UserID, &l.OrganizationID, &l.RelationshipType, &l.StartDate, &l.EndDate,
		&l.Frequency, &l.Notes, &l.IsDeleted, &l.CreatedAt, &l.UpdatedAt,
		&l.UserName, &l.OrganizationName, &l.OrganizationType)
	return &l, err
}

func (r *linkRepoPG) Create(ctx context.Context, l *Link) error {
	return connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO user_organizations (user_id, organization_id, relationship_type, start_date, end_date,
			frequency, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`,
		l.UserID, l.OrganizationID, l.RelationshipType, l.StartDate, l.EndDate, l.Frequency, l.Notes,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
}

func (r *linkRepoPG) GetByID(ctx context.Context, id int64) (*Link, error) {
	l, err := r.scanLink(connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+linkCols+` FROM `+linkFrom+` WHERE l.id = $1 AND l.is_deleted = FALSE`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("user organization", id)
	}
	return l, err
}

func (r *linkRepoPG) Update(ctx context.Context, l *Link) error {
	err := connFor(ctx, r.pool).QueryRow(ctx, `
		UPDATE user_organizations SET organization_id=$2, relationship_type=$3, start_date=$4,
			end_date=$5, frequency=$6, notes=$7, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`,
		l.ID, l.OrganizationID, l.RelationshipType, l.StartDate, l.EndDate, l.Frequency, l.Notes,
	).Scan(&l.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("user organization", l.ID)
	}
	return err
}

func (r *linkRepoPG) SoftDelete(ctx context.Context, id int64) error {
	found, err := db.SoftDelete(ctx, connFor(ctx, r.pool), "user_organizations", id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("user organization", id)
	}
	return nil
}

func (r *linkRepoPG) list(ctx context.Context, where string, arg int64) ([]*Link, error) {
	rows, err := connFor(ctx, r.pool).Query(ctx, `SELECT `+linkCols+` FROM `+linkFrom+`
		WHERE `+where+` = $1 AND l.is_deleted = FALSE AND o.is_deleted = FALSE AND u.is_deleted = FALSE
		ORDER BY l.start_date DESC NULLS LAST, l.id DESC`, arg)
	if err != nil {
		return nil, fmt.Errorf("list user organizations: %w", err)
	}
	defer rows.Close()
	var items []*Link
	for rows.Next() {
		l, err := r.scanLink(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func (r *linkRepoPG) ListByUser(ctx context.Context, userID int64) ([]*Link, error) {
	return r.list(ctx, "l.user_id", userID)
}

func (r *linkRepoPG) ListByOrganization(ctx context.Context, orgID int64) ([]*Link, error) {
	return r.list(ctx, "l.organization_id", orgID)
}
