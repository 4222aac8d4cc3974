package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery(t *testing.T) {
	staffID := int64(2)
	q := buildListQuery(ListFilter{StaffID: &staffID, ApprovalStatus: StatusActive, Search: "P-2025"})

	sql := q.DataSQL()
	assert.Contains(t, sql, "p.is_deleted = FALSE")
	assert.Contains(t, sql, "p.staff_id = $1")
	assert.Contains(t, sql, "p.approval_status = $2")
	assert.Contains(t, sql, "p.plan_number ILIKE $3")
	assert.Contains(t, sql, "u.name_kana ILIKE $3")
	assert.Contains(t, sql, "ORDER BY p.created_date DESC, p.id DESC")
	assert.Equal(t, staffID, q.CountArgs()[0])
	assert.Equal(t, "active", q.CountArgs()[1])
}
