// Package dates provides a civil calendar date type and the age and
// calendar-month arithmetic used by list filters and the dashboard.
package dates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const layout = "2006-01-02"

// Clock returns the current instant. Services take one so tests can pin "today".
type Clock func() time.Time

// Date is a calendar date without time of day. The zero value is "no date"
// and maps to SQL NULL and JSON null.
type Date struct {
	t time.Time
}

func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Of returns the calendar date of t in t's own location.
func Of(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

// Today returns the current date according to clock.
func Today(clock Clock) Date {
	if clock == nil {
		return Of(time.Now())
	}
	return Of(clock())
}

func Parse(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t: t}, nil
}

func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool { return d.t.IsZero() }
func (d Date) Time() time.Time { return d.t }
func (d Date) Year() int { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int { return d.t.Day() }
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Format(f string) string { return d.t.Format(f) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(layout)
}

// DaysUntil returns the signed number of days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.t.Format(layout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps from clients that send them.
	if len(s) > len(layout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*d = Of(t)
			return nil
		}
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ScanDate implements pgtype.DateScanner.
func (d *Date) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		*d = Date{}
		return nil
	}
	if v.InfinityModifier != pgtype.Finite {
		return fmt.Errorf("cannot scan infinite date")
	}
	*d = Of(v.Time)
	return nil
}

// DateValue implements pgtype.DateValuer.
func (d Date) DateValue() (pgtype.Date, error) {
	if d.IsZero() {
		return pgtype.Date{}, nil
	}
	return pgtype.Date{Time: d.t, Valid: true}, nil
}

// Age is the number of completed years between birth and today.
func Age(birth, today Date) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// yearsBefore returns the latest real date on or before (today.Year-n, today.Month, today.Day).
// 29 February clamps to 28 February in non-leap years.
func yearsBefore(today Date, n int) Date {
	y, m, day := today.Year()-n, today.Month(), today.Day()
	if last := daysIn(y, m); day > last {
		day = last
	}
	return New(y, m, day)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BirthRange bounds birth dates for an age filter. A zero field is unbounded.
// Matching births satisfy After < birth <= OnOrBefore.
type BirthRange struct {
	After      Date
	OnOrBefore Date
}

// BirthRangeForAge converts inclusive age bounds into birth-date bounds as of today.
func BirthRangeForAge(minAge, maxAge *int, today Date) BirthRange {
	var r BirthRange
	if minAge != nil {
		r.OnOrBefore = yearsBefore(today, *minAge)
	}
	if maxAge != nil {
		r.After = yearsBefore(today, *maxAge+1)
	}
	return r
}

// StartOfMonth returns the first day of d's month.
func StartOfMonth(d Date) Date {
	return New(d.Year(), d.Month(), 1)
}

// EndOfMonth returns the last day of d's month.
func EndOfMonth(d Date) Date {
	return New(d.Year(), d.Month(), daysIn(d.Year(), d.Month()))
}

// MonthsBack returns the first day of the calendar month n months before d's month.
func MonthsBack(d Date, n int) Date {
	return Date{t: StartOfMonth(d).t.AddDate(0, -n, 0)}
}
