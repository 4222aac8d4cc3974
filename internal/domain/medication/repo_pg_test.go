package medication

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildListQuery(t *testing.T) {
	userID := int64(3)
	current := true
	q := buildListQuery(ListFilter{UserID: &userID, IsCurrent: &current})

	sql := q.DataSQL()
	assert.Contains(t, sql, "LEFT JOIN prescribing_doctors d")
	assert.Contains(t, sql, "m.user_id = $1")
	assert.Contains(t, sql, "m.is_current = $2")
	assert.Contains(t, sql, "ORDER BY m.start_date DESC, m.id DESC LIMIT $3 OFFSET $4")
	assert.Equal(t, []interface{}{userID, true}, q.CountArgs())
}

func TestBuildDoctorQuery(t *testing.T) {
	q := buildDoctorQuery("さくら")
	assert.Contains(t, q.DataSQL(), "name ILIKE $1 OR hospital_name ILIKE $1")
	assert.Equal(t, "SELECT COUNT(*) FROM prescribing_doctors WHERE 1=1", buildDoctorQuery("").CountSQL())
}
