package consultation

import (
	"time"

	"github.com/soudan/casebook/internal/platform/dates"
)

// Consultation is one contact between a staff member and a user.
type Consultation struct {
	ID               int64      `db:"id" json:"id"`
	UserID           int64      `db:"user_id" json:"user_id"`
	StaffID          int64      `db:"staff_id" json:"staff_id"`
	ConsultationDate dates.Date `db:"consultation_date" json:"consultation_date"`
	ConsultationType string     `db:"consultation_type" json:"consultation_type"`
	Content          string     `db:"content" json:"content"`
	Response         *string    `db:"response" json:"response"`
	IsDeleted        bool       `db:"is_deleted" json:"is_deleted"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`

	UserName  string `db:"-" json:"user_name"`
	StaffName string `db:"-" json:"staff_name"`
}

type Input struct {
	UserID           *int64      `json:"user_id"`
	StaffID          *int64      `json:"staff_id"`
	ConsultationDate *dates.Date `json:"consultation_date"`
	ConsultationType *string     `json:"consultation_type"`
	Content          *string     `json:"content"`
	Response         *string     `json:"response"`
}

func (in *Input) apply(c *Consultation) {
	if in.UserID != nil {
		c.UserID = *in.UserID
	}
	if in.StaffID != nil {
		c.StaffID = *in.StaffID
	}
	if in.ConsultationDate != nil {
		c.ConsultationDate = *in.ConsultationDate
	}
	if in.ConsultationType != nil {
		c.ConsultationType = *in.ConsultationType
	}
	if in.Content != nil {
		c.Content = *in.Content
	}
	if in.Response != nil {
		c.Response = in.Response
	}
}

type ListFilter struct {
	UserID           *int64
	StaffID          *int64
	ConsultationType string
	DateFrom         dates.Date
	DateTo           dates.Date
	Search           string
}
