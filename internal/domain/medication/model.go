package medication

import (
	"time"

	"github.com/soudan/casebook/internal/platform/dates"
)

type Doctor struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	HospitalName *string   `db:"hospital_name" json:"hospital_name"`
	Department   *string   `db:"department" json:"department"`
	Phone        *string   `db:"phone" json:"phone"`
	Address      *string   `db:"address" json:"address"`
	Notes        *string   `db:"notes" json:"notes"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

type DoctorInput struct {
	Name         *string `json:"name"`
	HospitalName *string `json:"hospital_name"`
	Department   *string `json:"department"`
	Phone        *string `json:"phone"`
	Address      *string `json:"address"`
	Notes        *string `json:"notes"`
}

func (in *DoctorInput) apply(d *Doctor) {
	if in.Name != nil {
		d.Name = *in.Name
	}
	if in.HospitalName != nil {
		d.HospitalName = in.HospitalName
	}
	if in.Department != nil {
		d.Department = in.Department
	}
	if in.Phone != nil {
		d.Phone = in.Phone
	}
	if in.Address != nil {
		d.Address = in.Address
	}
	if in.Notes != nil {
		d.Notes = in.Notes
	}
}

type Medication struct {
	ID                  int64      `db:"id" json:"id"`
	UserID              int64      `db:"user_id" json:"user_id"`
	PrescribingDoctorID *int64     `db:"prescribing_doctor_id" json:"prescribing_doctor_id"`
	MedicationName      string     `db:"medication_name" json:"medication_name"`
	GenericName         *string    `db:"generic_name" json:"generic_name"`
	Dosage              *string    `db:"dosage" json:"dosage"`
	Frequency           *string    `db:"frequency" json:"frequency"`
	Timing              *string    `db:"timing" json:"timing"`
	StartDate           dates.Date `db:"start_date" json:"start_date"`
	EndDate             dates.Date `db:"end_date" json:"end_date"`
	IsCurrent           bool       `db:"is_current" json:"is_current"`
	Purpose             *string    `db:"purpose" json:"purpose"`
	Notes               *string    `db:"notes" json:"notes"`
	IsDeleted           bool       `db:"is_deleted" json:"is_deleted"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`

	UserName     string  `db:"-" json:"user_name"`
	DoctorName   *string `db:"-" json:"doctor_name"`
	HospitalName *string `db:"-" json:"hospital_name"`
}

type Input struct {
	UserID              *int64      `json:"user_id"`
	PrescribingDoctorID *int64      `json:"prescribing_doctor_id"`
	MedicationName      *string     `json:"medication_name"`
	GenericName         *string     `json:"generic_name"`
	Dosage              *string     `json:"dosage"`
	Frequency           *string     `json:"frequency"`
	Timing              *string     `json:"timing"`
	StartDate           *dates.Date `json:"start_date"`
	EndDate             *dates.Date `json:"end_date"`
	IsCurrent           *bool       `json:"is_current"`
	Purpose             *string     `json:"purpose"`
	Notes               *string     `json:"notes"`
}

func (in *Input) apply(m *Medication) {
	if in.UserID != nil {
		m.UserID = *in.UserID
	}
	if in.PrescribingDoctorID != nil {
		m.PrescribingDoctorID = in.PrescribingDoctorID
	}
	if in.MedicationName != nil {
		m.MedicationName = *in.MedicationName
	}
	if in.GenericName != nil {
		m.GenericName = in.GenericName
	}
	if in.Dosage != nil {
		m.Dosage = in.Dosage
	}
	if in.Frequency != nil {
		m.Frequency = in.Frequency
	}
	if in.Timing != nil {
		m.Timing = in.Timing
	}
	if in.StartDate != nil {
		m.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		m.EndDate = *in.EndDate
	}
	if in.IsCurrent != nil {
		m.IsCurrent = *in.IsCurrent
	}
	if in.Purpose != nil {
		m.Purpose = in.Purpose
	}
	if in.Notes != nil {
		m.Notes = in.Notes
	}
}

type ListFilter struct {
	UserID    *int64
	IsCurrent *bool
}

// Change is one row of the append-only medication change trail.
type Change struct {
	ID               int64      `db:"id" json:"id"`
	MedicationID     int64      `db:"medication_id" json:"medication_id"`
	ChangeDate       dates.Date `db:"change_date" json:"change_date"`
	ChangeType       string     `db:"change_type" json:"change_type"`
	PreviousValue    string     `db:"previous_value" json:"previous_value"`
	NewValue         string     `db:"new_value" json:"new_value"`
	Notes            string     `db:"notes" json:"notes"`
	ChangedByStaffID *int64     `db:"changed_by_staff_id" json:"changed_by_staff_id"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}
