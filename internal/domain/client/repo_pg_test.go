package client

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soudan/casebook/internal/platform/dates"
)

func TestBuildListQuery_KanaSearch(t *testing.T) {
	q := buildListQuery(ListFilter{Search: "さとう"}, dates.New(2025, 6, 1))

	sql := q.CountSQL()
	assert.Contains(t, sql, "u.is_deleted = FALSE")
	assert.Contains(t, sql, "u.name ILIKE $1")
	assert.Contains(t, sql, "u.name_kana ILIKE $2")
	assert.Equal(t, []interface{}{"%さとう%", "%サトウ%"}, q.CountArgs())
}

func TestBuildListQuery_AgeRangeInSQL(t *testing.T) {
	lo, hi := 18, 64
	q := buildListQuery(ListFilter{MinAge: &lo, MaxAge: &hi}, dates.New(2025, 6, 1))

	sql := q.DataSQL()
	assert.Contains(t, sql, "u.birth_date > $1")
	assert.Contains(t, sql, "u.birth_date <= $2")
	assert.Equal(t, []interface{}{dates.New(1960, 6, 1), dates.New(2007, 6, 1)}, q.CountArgs())
	assert.True(t, strings.HasSuffix(sql, "LIMIT $3 OFFSET $4"))
}

func TestBuildListQuery_IncludeDeletedAndFilters(t *testing.T) {
	staffID := int64(3)
	guardian := false
	q := buildListQuery(ListFilter{IncludeDeleted: true, StaffID: &staffID, HasGuardian: &guardian}, dates.New(2025, 6, 1))

	sql := q.CountSQL()
	assert.NotContains(t, sql, "is_deleted")
	assert.Contains(t, sql, "u.assigned_staff_id = $1")
	assert.Contains(t, sql, "NOT (COALESCE(u.guardian_type, '') <> ''")
}

func TestBuildListQuery_SortByAgeFlipsDirection(t *testing.T) {
	q := buildListQuery(ListFilter{SortBy: "age", Order: "asc"}, dates.New(2025, 6, 1))
	assert.Contains(t, q.DataSQL(), "ORDER BY u.birth_date DESC")

	q = buildListQuery(ListFilter{SortBy: "name", Order: "desc"}, dates.New(2025, 6, 1))
	assert.Contains(t, q.DataSQL(), "ORDER BY u.name DESC")

	q = buildListQuery(ListFilter{SortBy: "password"}, dates.New(2025, 6, 1))
	assert.Contains(t, q.DataSQL(), "ORDER BY u.id ASC")
}
