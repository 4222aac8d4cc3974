package notebook

import (
	"time"

	"github.com/soudan/casebook/internal/platform/dates"
)

const (
	TypeRyoiku  = "療育手帳"
	TypeSeishin = "精神障害者保健福祉手帳"
)

// Notebook is a disability certificate held by a user.
type Notebook struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	NotebookType string     `db:"notebook_type" json:"notebook_type"`
	Grade        *string    `db:"grade" json:"grade"`
	IssueDate    dates.Date `db:"issue_date" json:"issue_date"`
	RenewalDate  dates.Date `db:"renewal_date" json:"renewal_date"`
	Notes        *string    `db:"notes" json:"notes"`
	IsDeleted    bool       `db:"is_deleted" json:"is_deleted"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

type Input struct {
	UserID       *int64      `json:"user_id"`
	NotebookType *string     `json:"notebook_type"`
	Grade        *string     `json:"grade"`
	IssueDate    *dates.Date `json:"issue_date"`
	RenewalDate  *dates.Date `json:"renewal_date"`
	Notes        *string     `json:"notes"`
}

func (in *Input) apply(n *Notebook) {
	if in.UserID != nil {
		n.UserID = *in.UserID
	}
	if in.NotebookType != nil {
		n.NotebookType = *in.NotebookType
	}
	if in.Grade != nil {
		n.Grade = in.Grade
	}
	if in.IssueDate != nil {
		n.IssueDate = *in.IssueDate
	}
	if in.RenewalDate != nil {
		n.RenewalDate = *in.RenewalDate
	}
	if in.Notes != nil {
		n.Notes = in.Notes
	}
}

type ListFilter struct {
	UserID       *int64
	NotebookType string
}
