package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is the part of pgx pools and transactions SoftDelete needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// SoftDelete flags the row with the given id as deleted. A row that is
// already deleted still counts as found and keeps its original updated_at,
// so repeating a delete is a no-op. found is false only when no row has
// that id.
func SoftDelete(ctx context.Context, q Execer, table string, id int64) (found bool, err error) {
	tag, err := q.Exec(ctx, `UPDATE `+table+` SET is_deleted = TRUE,
		updated_at = CASE WHEN is_deleted THEN updated_at ELSE NOW() END
		WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
