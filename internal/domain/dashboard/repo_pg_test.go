package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soudan/casebook/internal/platform/dates"
)

func TestExpiringPlansQuery(t *testing.T) {
	from, to := dates.MustParse("2025-06-15"), dates.MustParse("2025-09-13")
	sql, args, err := expiringPlansQuery(from, to).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "JOIN users u ON u.id = p.user_id")
	assert.Contains(t, sql, "p.is_deleted = $1 AND u.is_deleted = $2")
	assert.Contains(t, sql, "p.approval_status <> $3")
	assert.Contains(t, sql, "p.end_date >= $4")
	assert.Contains(t, sql, "p.end_date <= $5")
	assert.Contains(t, sql, "ORDER BY p.end_date ASC")
	assert.Equal(t, []interface{}{false, false, "ended", from, to}, args)
}

func TestOverdueMonitoringsQuery_LatestPerPlan(t *testing.T) {
	today := dates.MustParse("2025-06-15")
	sql, args, err := overdueMonitoringsQuery(today).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM (SELECT DISTINCT ON (plan_id) id, plan_id, user_id, next_monitoring_date FROM monitorings WHERE is_deleted = FALSE ORDER BY plan_id, monitoring_date DESC, id DESC) AS l")
	assert.Contains(t, sql, "l.next_monitoring_date < $3")
	assert.Equal(t, []interface{}{false, false, today}, args)
}

func TestMonthlyConsultationsQuery(t *testing.T) {
	sql, _, err := monthlyConsultationsQuery(dates.MustParse("2025-01-01"), dates.MustParse("2025-06-30")).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "to_char(consultation_date, 'YYYY-MM')")
	assert.Contains(t, sql, "GROUP BY 1")
}

func TestMonitoringsDueQuery(t *testing.T) {
	sql, args, err := monitoringsDueQuery(dates.MustParse("2025-06-01"), dates.MustParse("2025-06-30")).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT COUNT(*) FROM monitorings m")
	assert.Contains(t, sql, "m.next_monitoring_date >= $3")
	assert.Len(t, args, 4)
}
