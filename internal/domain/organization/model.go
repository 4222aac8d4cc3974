package organization

import (
	"time"

	"github.com/soudan/casebook/internal/platform/dates"
)

const (
	TypeService  = "サービス事業所"
	TypeMedical  = "医療機関"
	TypeGuardian = "後見人"
	TypeOther    = "その他"
)

type Organization struct {
	ID                 int64     `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	OrganizationType   string    `db:"organization_type" json:"organization_type"`
	PostalCode         *string   `db:"postal_code" json:"postal_code"`
	Address            *string   `db:"address" json:"address"`
	Phone              *string   `db:"phone" json:"phone"`
	Fax                *string   `db:"fax" json:"fax"`
	Email              *string   `db:"email" json:"email"`
	ContactPerson      *string   `db:"contact_person" json:"contact_person"`
	ContactPersonPhone *string   `db:"contact_person_phone" json:"contact_person_phone"`
	Notes              *string   `db:"notes" json:"notes"`
	IsDeleted          bool      `db:"is_deleted" json:"is_deleted"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

type Input struct {
	Name               *string `json:"name"`
	OrganizationType   *string `json:"organization_type"`
	PostalCode         *string `json:"postal_code"`
	Address            *string `json:"address"`
	Phone              *string `json:"phone"`
	Fax                *string `json:"fax"`
	Email              *string `json:"email"`
	ContactPerson      *string `json:"contact_person"`
	ContactPersonPhone *string `json:"contact_person_phone"`
	Notes              *string `json:"notes"`
}

func (in *Input) apply(o *Organization) {
	if in.Name != nil {
		o.Name = *in.Name
	}
	if in.OrganizationType != nil {
		o.OrganizationType = *in.OrganizationType
	}
	if in.PostalCode != nil {
		o.PostalCode = in.PostalCode
	}
	if in.Address != nil {
		o.Address = in.Address
	}
	if in.Phone != nil {
		o.Phone = in.Phone
	}
	if in.Fax != nil {
		o.Fax = in.Fax
	}
	if in.Email != nil {
		o.Email = in.Email
	}
	if in.ContactPerson != nil {
		o.ContactPerson = in.ContactPerson
	}
	if in.ContactPersonPhone != nil {
		o.ContactPersonPhone = in.ContactPersonPhone
	}
	if in.Notes != nil {
		o.Notes = in.Notes
	}
}

type ListFilter struct {
	Search           string
	OrganizationType string
}

// Link ties a user to an organization that supports them.
type Link struct {
	ID               int64      `db:"id" json:"id"`
	UserID           int64      `db:"user_id" json:"user_id"`
	OrganizationID   int64      `db:"organization_id" json:"organization_id"`
	RelationshipType *string    `db:"relationship_type" json:"relationship_type"`
	StartDate        dates.Date `db:"start_date" json:"start_date"`
	EndDate          dates.Date `db:"end_date" json:"end_date"`
	Frequency        *string    `db:"frequency" json:"frequency"`
	Notes            *string    `db:"notes" json:"notes"`
	IsDeleted        bool       `db:"is_deleted" json:"is_deleted"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`

	UserName         string `db:"-" json:"user_name"`
	OrganizationName string `db:"-" json:"organization_name"`
	OrganizationType string `db:"-" json:"organization_type"`
}

type LinkInput struct {
	UserID           *int64      `json:"user_id"`
	OrganizationID   *int64      `json:"organization_id"`
	RelationshipType *string     `json:"relationship_type"`
	StartDate        *dates.Date `json:"start_date"`
	EndDate          *dates.Date `json:"end_date"`
	Frequency        *string     `json:"frequency"`
	Notes            *string     `json:"notes"`
}

func (in *LinkInput) apply(l *Link) {
	if in.OrganizationID != nil {
		l.OrganizationID = *in.OrganizationID
	}
	if in.RelationshipType != nil {
		l.RelationshipType = in.RelationshipType
	}
	if in.StartDate != nil {
		l.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		l.EndDate = *in.EndDate
	}
	if in.Frequency != nil {
		l.Frequency = in.Frequency
	}
	if in.Notes != nil {
		l.Notes = in.Notes
	}
}
