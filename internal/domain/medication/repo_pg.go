package medication

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

// -- Prescribing doctors --

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository {
	return &doctorRepoPG{pool: pool}
}

const doctorCols = `id, name, hospital_name, department, phone, address, notes, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.HospitalName, &d.Department, &d.Phone, &d.Address, &d.Notes,
		&d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	return connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO prescribing_doctors (name, hospital_name, department, phone, address, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at, updated_at`,
		d.Name, d.HospitalName, d.Department, d.Phone, d.Address, d.Notes,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	d, err := scanDoctor(connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+doctorCols+` FROM prescribing_doctors WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("prescribing doctor", id)
	}
	return d, err
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	err := connFor(ctx, r.pool).QueryRow(ctx, `
		UPDATE prescribing_doctors SET name=$2, hospital_name=$3, department=$4, phone=$5, address=$6,
			notes=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		d.ID, d.Name, d.HospitalName, d.Department, d.Phone, d.Address, d.Notes,
	).Scan(&d.UpdatedAt)
	if db.IsNoRows(err) {
		return apperr.NotFound("prescribing doctor", d.ID)
	}
	return err
}

func (r *doctorRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := connFor(ctx, r.pool).Exec(ctx, `DELETE FROM prescribing_doctors WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return apperr.Conflict("prescribing doctor %d is still referenced by medications", id)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("prescribing doctor", id)
	}
	return nil
}

func buildDoctorQuery(term string) *search.Query {
	q := search.New("prescribing_doctors", doctorCols)
	if term != "" {
		q.Text(term, "name", "hospital_name")
	}
	q.OrderBy("name ASC, id ASC")
	return q
}

func (r *doctorRepoPG) List(ctx context.Context, term string, limit, offset int) ([]*Doctor, int, error) {
	q := buildDoctorQuery(term)
	conn := connFor(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count prescribing doctors: %w", err)
	}
	rows, err := conn.Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list prescribing doctors: %w", err)
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

// -- Medications --

type medicationRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &medicationRepoPG{pool: pool}
}

const medicationFrom = `medications m
	JOIN users u ON u.id = m.user_id
	LEFT JOIN prescribing_doctors d ON d.id = m.prescribing_doctor_id`

const medicationCols = `m.id, m.user_id, m.prescribing_doctor_id, m.medication_name, m.generic_name,
	m.dosage, m.frequency, m.timing, m.start_date, m.end_date, m.is_current, m.purpose, m.notes,
	m.is_deleted, m.created_at, m.updated_at, u.name, d.name, d.hospital_name`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.UserID, &m.PrescribingDoctorID, &m.MedicationName, &m.GenericName,
		&m.Dosage, &m.Frequency, &m.Timing, &m.StartDate, &m.EndDate, &m.IsCurrent, &m.Purpose, &m.Notes,
		&m.IsDeleted, &m.CreatedAt, &m.UpdatedAt, &m.UserName, &m.DoctorName, &m.HospitalName)
	return &m, err
}

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	err := connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO medications (user_id, prescribing_doctor_id, medication_name, generic_name, dosage,
			frequency, timing, start_date, end_date, is_current, purpose, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, created_at, updated_at`,
		m.UserID, m.PrescribingDoctorID, m.MedicationName, m.GenericName, m.Dosage,
		m.Frequency, m.Timing, m.StartDate, m.EndDate, m.IsCurrent, m.Purpose, m.Notes,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if db.IsForeignKeyViolation(err) {
		return apperr.Validation("referenced user or prescribing doctor does not exist")
	}
	return err
}

func (r *medicationRepoPG) GetByID(ctx context.Context, id int64) (*Medication, error) {
	m, err := scanMedication(connFor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+medicationCols+` FROM `+medicationFrom+` WHERE m.id = $1 AND m.is_deleted = FALSE`, id))
	if db.IsNoRows(err) {
		return nil, apperr.NotFound("medication", id)
	}
	return m, err
}

func (r *medicationRepoPG) Update(ctx context.Context, m *Medication) error {
	err := connFor(ctx, r.pool).QueryRow(ctx, `
		UPDATE medications SET user_id=$2, prescribing_doctor_id=$3, medication_name=$4, generic_name=$5,
			dosage=$6, frequency=$7, timing=$8, start_date=$9, end_date=$10, is_current=$11, purpose=$12,
			notes=$13, updated_at=NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING updated_at`,
		m.ID, m.UserID, m.PrescribingDoctorID, m.MedicationName, m.GenericName,
		m.Dosage, m.Frequency, m.Timing, m.StartDate, m.EndDate, m.IsCurrent, m.Purpose,
		m.Notes,
	).Scan(&m.UpdatedAt)
	switch {
	case db.IsNoRows(err):
		return apperr.NotFound("medication", m.ID)
	case db.IsForeignKeyViolation(err):
		return apperr.Validation("referenced user or prescribing doctor does not exist")
	}
	return err
}

func (r *medicationRepoPG) SoftDelete(ctx context.Context, id int64) error {
	found, err := db.SoftDelete(ctx, connFor(ctx, r.pool), "medications", id)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("medication", id)
	}
	return nil
}

func buildListQuery(f ListFilter) *search.Query {
	q := search.New(medicationFrom, medicationCols)
	q.NotDeleted("m.is_deleted", false)
	if f.UserID != nil {
		q.Eq("m.user_id", *f.UserID)
	}
	if f.IsCurrent != nil {
		q.Eq("m.is_current", *f.IsCurrent)
	}
	q.OrderBy("m.start_date DESC, m.id DESC")
	return q
}

func (r *medicationRepoPG) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Medication, int, error) {
	q := buildListQuery(f)
	conn := connFor(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medications: %w", err)
	}
	rows, err := conn.Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()
	var items []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *medicationRepoPG) AddChange(ctx context.Context, c *Change) error {
	return connFor(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO medication_changes (medication_id, change_date, change_type, previous_value,
			new_value, notes, changed_by_staff_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`,
		c.MedicationID, c.ChangeDate, c.ChangeType, c.PreviousValue, c.NewValue, c.Notes, c.ChangedByStaffID,
	).Scan(&c.ID, &c.CreatedAt)
}

func (r *medicationRepoPG) ListChanges(ctx context.Context, medicationID int64) ([]*Change, error) {
	rows, err := connFor(ctx, r.pool).Query(ctx, `
		SELECT id, medication_id, change_date, change_type, COALESCE(previous_value, ''),
			COALESCE(new_value, ''), COALESCE(notes, ''), changed_by_staff_id, created_at
		FROM medication_changes
		WHERE medication_id = $1
		ORDER BY change_date DESC, created_at DESC, id DESC`, medicationID)
	if err != nil {
		return nil, fmt.Errorf("list medication changes: %w", err)
	}
	defer rows.Close()
	var items []*Change
	for rows.Next() {
		var c Change
		if err := rows.Scan(&c.ID, &c.MedicationID, &c.ChangeDate, &c.ChangeType, &c.PreviousValue,
			&c.NewValue, &c.Notes, &c.ChangedByStaffID, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}
