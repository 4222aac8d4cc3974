package client

import (
	"time"

	"github.com/soudan/casebook/internal/platform/dates"
)

// User is a person receiving consultation support. The API calls them
// "users"; staff accounts live in the staff package.
type User struct {
	ID                             int64      `db:"id" json:"id"`
	Name                           string     `db:"name" json:"name"`
	NameKana                       *string    `db:"name_kana" json:"name_kana"`
	BirthDate                      dates.Date `db:"birth_date" json:"birth_date"`
	Gender                         *string    `db:"gender" json:"gender"`
	PostalCode                     *string    `db:"postal_code" json:"postal_code"`
	Address                        *string    `db:"address" json:"address"`
	Phone                          *string    `db:"phone" json:"phone"`
	Email                          *string    `db:"email" json:"email"`
	EmergencyContactName           *string    `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone          *string    `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	DisabilitySupportLevel         *int       `db:"disability_support_level" json:"disability_support_level"`
	DisabilitySupportCertifiedDate dates.Date `db:"disability_support_certified_date" json:"disability_support_certified_date"`
	DisabilitySupportExpiryDate    dates.Date `db:"disability_support_expiry_date" json:"disability_support_expiry_date"`
	GuardianType                   *string    `db:"guardian_type" json:"guardian_type"`
	GuardianName                   *string    `db:"guardian_name" json:"guardian_name"`
	GuardianContact                *string    `db:"guardian_contact" json:"guardian_contact"`
	AssignedStaffID                *int64     `db:"assigned_staff_id" json:"assigned_staff_id"`
	AssignedStaffName              *string    `db:"-" json:"assigned_staff_name"`
	IsDeleted                      bool       `db:"is_deleted" json:"is_deleted"`
	CreatedAt                      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                      time.Time  `db:"updated_at" json:"updated_at"`

	// Age is derived from BirthDate when the record is read.
	Age int `db:"-" json:"age"`
}

// HasGuardian reports whether any guardian detail is recorded.
func (u *User) HasGuardian() bool {
	return nonEmpty(u.GuardianType) || nonEmpty(u.GuardianName)
}

func nonEmpty(s *string) bool { return s != nil && *s != "" }

// Input carries the writable fields of a User. On update, nil fields are
// left unchanged.
type Input struct {
	Name                           *string     `json:"name"`
	NameKana                       *string     `json:"name_kana"`
	BirthDate                      *dates.Date `json:"birth_date"`
	Gender                         *string     `json:"gender"`
	PostalCode                     *string     `json:"postal_code"`
	Address                        *string     `json:"address"`
	Phone                          *string     `json:"phone"`
	Email                          *string     `json:"email"`
	EmergencyContactName           *string     `json:"emergency_contact_name"`
	EmergencyContactPhone          *string     `json:"emergency_contact_phone"`
	DisabilitySupportLevel         *int        `json:"disability_support_level"`
	DisabilitySupportCertifiedDate *dates.Date `json:"disability_support_certified_date"`
	DisabilitySupportExpiryDate    *dates.Date `json:"disability_support_expiry_date"`
	GuardianType                   *string     `json:"guardian_type"`
	GuardianName                   *string     `json:"guardian_name"`
	GuardianContact                *string     `json:"guardian_contact"`
	AssignedStaffID                *int64      `json:"assigned_staff_id"`
}

func (in *Input) apply(u *User) {
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.NameKana != nil {
		u.NameKana = in.NameKana
	}
	if in.BirthDate != nil {
		u.BirthDate = *in.BirthDate
	}
	if in.Gender != nil {
		u.Gender = in.Gender
	}
	if in.PostalCode != nil {
		u.PostalCode = in.PostalCode
	}
	if in.Address != nil {
		u.Address = in.Address
	}
	if in.Phone != nil {
		u.Phone = in.Phone
	}
	if in.Email != nil {
		u.Email = in.Email
	}
	if in.EmergencyContactName != nil {
		u.EmergencyContactName = in.EmergencyContactName
	}
	if in.EmergencyContactPhone != nil {
		u.EmergencyContactPhone = in.EmergencyContactPhone
	}
	if in.DisabilitySupportLevel != nil {
		u.DisabilitySupportLevel = in.DisabilitySupportLevel
	}
	if in.DisabilitySupportCertifiedDate != nil {
		u.DisabilitySupportCertifiedDate = *in.DisabilitySupportCertifiedDate
	}
	if in.DisabilitySupportExpiryDate != nil {
		u.DisabilitySupportExpiryDate = *in.DisabilitySupportExpiryDate
	}
	if in.GuardianType != nil {
		u.GuardianType = in.GuardianType
	}
	if in.GuardianName != nil {
		u.GuardianName = in.GuardianName
	}
	if in.GuardianContact != nil {
		u.GuardianContact = in.GuardianContact
	}
	if in.AssignedStaffID != nil {
		u.AssignedStaffID = in.AssignedStaffID
	}
}

// ListFilter narrows the user list. Age bounds are inclusive.
type ListFilter struct {
	Search         string
	Name           string
	NameKana       string
	Gender         string
	StaffID        *int64
	MinAge         *int
	MaxAge         *int
	Level          *int
	HasGuardian    *bool
	IncludeDeleted bool
	SortBy         string // id, name, age
	Order          string // asc, desc
}
