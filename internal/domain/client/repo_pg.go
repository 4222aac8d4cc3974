package client

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/dates"
	"github.com/soudan/casebook/internal/platform/db"
	"github.com/soudan/casebook/internal/platform/search"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type userRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userFrom = `users u LEFT JOIN staffs s ON s.id = u.assigned_staff_id`

const userCols = `u.id, u.name, u.name_kana, u.birth_date, u.gender, u.postal_code, u.address,
	u.phone, u.email, u.emergency_contact_name, u.emergency_contact_phone,
	u.disability_support_level, u.disability_support_certified_date, u.disability_support_expiry_date,
	u.guardian_type, u.guardian_name, u.guardian_contact, u.assigned_staff_id, s.name,
	u.is_deleted, u.created_at, u.updated_at`

func (r *userRepoPG) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.NameKana, &u.BirthDate, &u.Gender, &u.PostalCode, &u.Address,
		&u.Phone, &u.Email, &u.EmergencyContactName, &u.EmergencyContactPhone,
		&u.DisabilitySupportLevel, &u.DisabilitySupportCertifiedDate, &u.DisabilitySupportExpiryDate,
		&u.GuardianType, &u.GuardianName, &u.GuardianContact, &u.AssignedStaffID, &u.AssignedStaffName,
		&u.IsDeleted, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (name, name_kana, birth_date, gender, postal_code, address, phone, email,
			emergency_contact_name, emergency_contact_phone, disability_support_level,
			disability_support_certified_date, disability_support_expiry_date,
			guardian_type, guardian_name, guardian_contact, assigned_staff_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING id, created_at, updated_at`,
		u.Name, u.NameKana, u.BirthDate, u.Gender, u.PostalCode, u.Address, u.Phone, u.Email,
		u.EmergencyContactName, u.EmergencyContactPhone, u.DisabilitySupportLevel,
		u.DisabilitySupportCertifiedDate, u.DisabilitySupportExpiryDate,
		u.GuardianType, u.GuardianName, u.GuardianContact, u.AssignedStaffID,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *userRepoPG) GetByID(ctx context.Context, id int64, includeDeleted bool) (*User, error) {
	sql := `SELECT ` + userCols + ` FROM ` + userFrom + ` WHERE u.id = $1`
	if !includeDeleted {
		sql += ` AND u.is_deleted = FALSE`
	}
	u, err := r.scanUser(r.conn(ctx).QueryRow(ctx, sql, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("user", id)
	}
	return u, err
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE users SET name=$2, name_kana=$3, birth_date=$4, gender=$5, postal_code=$6, address=$7,
			phone=$8, email=$9, emergency_contact_name=$10, emergency_contact_phone=$11,
			disability_support_level=$12, disability_support_certified_date=$13,
			disability_support_expiry_date=$14, guardian_type=$15, guardian_name=$16,
			guardian_contact=$17, assigned_staff_id=$18, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`,
		u.ID, u.Name, u.NameKana, u.BirthDate, u.Gender, u.PostalCode, u.Address,
		u.Phone, u.Email, u.EmergencyContactName, u.EmergencyContactPhone,
		u.DisabilitySupportLevel, u.DisabilitySupportCertifiedDate,
		u.DisabilitySupportExpiryDate, u.GuardianType, u.GuardianName,
		u.GuardianContact, u.AssignedStaffID,
	).Scan(&u.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("user", u.ID)
	}
	return err
}

func (r *userRepoPG) SoftDelete(ctx context.Context, id int64) error {
	found, err := db.SoftDelete(ctx, r.conn(ctx), "users", id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("user", id)
	}
	return nil
}

var userSortColumns = map[string]string{
	"id":   "u.id",
	"name": "u.name",
	// ascending age is descending birth date; the direction is flipped below
	"age": "u.birth_date",
}

func buildListQuery(f ListFilter, today dates.Date) *search.Query {
	q := search.New(userFrom, userCols)
	q.NotDeleted("u.is_deleted", f.IncludeDeleted)
	if f.Search != "" {
		q.Text(f.Search, "u.name", "u.name_kana")
	}
	if f.Name != "" {
		q.Like("u.name", f.Name)
	}
	if f.NameKana != "" {
		q.Like("u.name_kana", f.NameKana)
	}
	if f.Gender != "" {
		q.Eq("u.gender", f.Gender)
	}
	if f.StaffID != nil {
		q.Eq("u.assigned_staff_id", *f.StaffID)
	}
	if f.Level != nil {
		q.Eq("u.disability_support_level", *f.Level)
	}
	if f.HasGuardian != nil {
		cond := `(COALESCE(u.guardian_type, '') <> '' OR COALESCE(u.guardian_name, '') <> '')`
		if !*f.HasGuardian {
			cond = "NOT " + cond
		}
		q.Add(cond)
	}
	if f.MinAge != nil || f.MaxAge != nil {
		q.BirthRange("u.birth_date", dates.BirthRangeForAge(f.MinAge, f.MaxAge, today))
	}

	order := f.Order
	if f.SortBy == "age" {
		if order == "desc" {
			order = "asc"
		} else {
			order = "desc"
		}
	}
	q.ApplySort(f.SortBy, order, userSortColumns, "u.id ASC")
	return q
}

func (r *userRepoPG) List(ctx context.Context, f ListFilter, today dates.Date, limit, offset int) ([]*User, int, error) {
	q := buildListQuery(f, today)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}

func (r *userRepoPG) StaffExists(ctx context.Context, staffID int64) (bool, error) {
	var ok bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM staffs WHERE id = $1)`, staffID).Scan(&ok)
	return ok, err
}
