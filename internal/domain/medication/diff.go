package medication

import (
	"strconv"

	"github.com/soudan/casebook/internal/platform/dates"
)

var changeTypes = map[string]string{
	"medication_name":       "薬品名変更",
	"generic_name":          "一般名変更",
	"dosage":                "用量変更",
	"frequency":             "服用回数変更",
	"timing":                "服用タイミング変更",
	"start_date":            "開始日変更",
	"end_date":              "終了日変更",
	"is_current":            "服用状態変更",
	"purpose":               "処方目的変更",
	"notes":                 "備考変更",
	"prescribing_doctor_id": "処方医変更",
}

func changeTypeFor(field string) string {
	if t, ok := changeTypes[field]; ok {
		return t
	}
	return "その他の変更"
}

type trackedField struct {
	name  string
	label string
	value func(m *Medication) string
}

// trackedFields is every mutable field, in the order changes are recorded.
var trackedFields = []trackedField{
	{"medication_name", "薬品名", func(m *Medication) string { return m.MedicationName }},
	{"generic_name", "一般名", func(m *Medication) string { return str(m.GenericName) }},
	{"dosage", "用量", func(m *Medication) string { return str(m.Dosage) }},
	{"frequency", "服用回数", func(m *Medication) string { return str(m.Frequency) }},
	{"timing", "服用タイミング", func(m *Medication) string { return str(m.Timing) }},
	{"start_date", "開始日", func(m *Medication) string { return m.StartDate.String() }},
	{"end_date", "終了日", func(m *Medication) string { return m.EndDate.String() }},
	{"is_current", "服用状態", func(m *Medication) string { return strconv.FormatBool(m.IsCurrent) }},
	{"purpose", "処方目的", func(m *Medication) string { return str(m.Purpose) }},
	{"notes", "備考", func(m *Medication) string { return str(m.Notes) }},
	{"prescribing_doctor_id", "処方医", func(m *Medication) string { return idString(m.PrescribingDoctorID) }},
	{"user_id", "利用者", func(m *Medication) string { return strconv.FormatInt(m.UserID, 10) }},
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func idString(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

// diff returns one change per field that differs between before and after.
func diff(before, after *Medication, on dates.Date, staffID *int64) []Change {
	var changes []Change
	for _, f := range trackedFields {
		prev, next := f.value(before), f.value(after)
		if prev == next {
			continue
		}
		changes = append(changes, Change{
			MedicationID:     after.ID,
			ChangeDate:       on,
			ChangeType:       changeTypeFor(f.name),
			PreviousValue:    prev,
			NewValue:         next,
			Notes:            f.label + "の変更",
			ChangedByStaffID: staffID,
		})
	}
	return changes
}
