package plan

import (
	"encoding/json"
	"fmt"
)

// Status is the approval lifecycle of a plan. It only moves forward, one
// step at a time.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusActive   Status = "active"
	StatusEnded    Status = "ended"
)

var statusLabels = map[Status]string{
	StatusDraft:    "作成中",
	StatusApproved: "承認済み",
	StatusActive:   "実施中",
	StatusEnded:    "終了",
}

var nextStatus = map[Status]Status{
	StatusDraft:    StatusApproved,
	StatusApproved: StatusActive,
	StatusActive:   StatusEnded,
}

// ParseStatus accepts the English code or its Japanese label.
func ParseStatus(s string) (Status, error) {
	if _, ok := statusLabels[Status(s)]; ok {
		return Status(s), nil
	}
	for st, label := range statusLabels {
		if label == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid approval_status: %q", s)
}

func (s Status) Label() string { return statusLabels[s] }

// Next returns the only status s may move to.
func (s Status) Next() (Status, bool) {
	n, ok := nextStatus[s]
	return n, ok
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}
