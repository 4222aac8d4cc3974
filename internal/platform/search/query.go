// Package search builds the filtered, paginated list queries shared by the
// domain repositories.
package search

import (
	"fmt"
	"strings"

	"github.com/soudan/casebook/internal/platform/dates"
	"github.com/soudan/casebook/internal/platform/kana"
)

// Query accumulates a WHERE clause with positional ($n) arguments.
type Query struct {
	from    string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

// New creates a Query selecting cols from the given FROM expression, which
// may include joins.
func New(from, cols string) *Query {
	return &Query{
		from: from,
		cols: cols,
		idx:  1,
	}
}

// Idx returns the next available parameter index.
func (q *Query) Idx() int { return q.idx }

// Add appends a raw WHERE clause fragment (without leading "AND").
func (q *Query) Add(clause string, args ...interface{}) {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx += len(args)
}

// Eq adds "col = $n".
func (q *Query) Eq(col string, val interface{}) {
	q.Add(fmt.Sprintf("%s = $%d", col, q.idx), val)
}

// NotDeleted excludes soft-deleted rows unless includeDeleted is set.
func (q *Query) NotDeleted(col string, includeDeleted bool) {
	if includeDeleted {
		return
	}
	q.where += fmt.Sprintf(" AND %s = FALSE", col)
}

// Text adds a case-insensitive substring match of term against any of cols,
// testing both the raw term and its kana-folded form.
func (q *Query) Text(term string, cols ...string) {
	patterns := kana.Patterns(term)
	if len(patterns) == 0 || len(cols) == 0 {
		return
	}
	var ors []string
	for i := range patterns {
		for _, col := range cols {
			ors = append(ors, fmt.Sprintf("%s ILIKE $%d", col, q.idx+i))
		}
	}
	args := make([]interface{}, len(patterns))
	for i, p := range patterns {
		args[i] = p
	}
	q.Add("("+strings.Join(ors, " OR ")+")", args...)
}

// Like adds a single-column substring match with kana folding.
func (q *Query) Like(col, term string) {
	q.Text(term, col)
}

// DateRange bounds col by from/to inclusive; zero dates are ignored.
func (q *Query) DateRange(col string, from, to dates.Date) {
	if !from.IsZero() {
		q.Add(fmt.Sprintf("%s >= $%d", col, q.idx), from)
	}
	if !to.IsZero() {
		q.Add(fmt.Sprintf("%s <= $%d", col, q.idx), to)
	}
}

// BirthRange restricts a birth-date column to the ages described by r.
func (q *Query) BirthRange(col string, r dates.BirthRange) {
	if !r.After.IsZero() {
		q.Add(fmt.Sprintf("%s > $%d", col, q.idx), r.After)
	}
	if !r.OnOrBefore.IsZero() {
		q.Add(fmt.Sprintf("%s <= $%d", col, q.idx), r.OnOrBefore)
	}
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *Query) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

// ApplySort orders by the column mapped from field in allowed, falling back
// to defaultOrder for unknown fields.
func (q *Query) ApplySort(field, order string, allowed map[string]string, defaultOrder string) {
	col, ok := allowed[field]
	if !ok {
		q.orderBy = defaultOrder
		return
	}
	dir := "ASC"
	if strings.EqualFold(order, "desc") {
		dir = "DESC"
	}
	q.orderBy = fmt.Sprintf("%s %s", col, dir)
}

// CountSQL returns the count query SQL.
func (q *Query) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", q.from, q.where)
}

// CountArgs returns the arguments for the count query.
func (q *Query) CountArgs() []interface{} {
	return q.args
}

// DataSQL returns the data query SQL with ORDER BY and LIMIT/OFFSET.
func (q *Query) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.from, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
	return sql
}

// DataArgs returns the arguments for the data query (filter args + limit + offset).
func (q *Query) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}
