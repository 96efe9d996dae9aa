// Package query builds parameterized SQL fragments for the partial-update and
// filtered-list protocols shared by every entity repository. Column names are
// never taken from caller input: repositories pass fixed, pre-validated schema
// identifiers and only values travel as bind parameters.
package query

import (
	"fmt"
	"strings"
)

// Update accumulates the SET clause of a partial update in a deterministic
// order: columns appear exactly in the order Set was called, each bound to a
// positional parameter.
type Update struct {
	cols []string
	args []interface{}
}

// NewUpdate returns an empty update builder.
func NewUpdate() *Update {
	return &Update{}
}

// Set adds a column assignment. col must be a fixed schema identifier.
func (u *Update) Set(col string, value interface{}) *Update {
	u.cols = append(u.cols, col)
	u.args = append(u.args, value)
	return u
}

// Empty reports whether no column has been set.
func (u *Update) Empty() bool { return len(u.cols) == 0 }

// SQL renders "UPDATE table SET c1=$1, ... WHERE keyCol=$n" and returns it
// with the full argument list, key last.
func (u *Update) SQL(table, keyCol string, key interface{}) (string, []interface{}) {
	parts := make([]string, len(u.cols))
	for i, col := range u.cols {
		parts[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		table, strings.Join(parts, ", "), keyCol, len(u.cols)+1)
	return sql, append(append([]interface{}{}, u.args...), key)
}

// InsertSQL renders "INSERT INTO table (keyCol, c1, ...) VALUES ($1, ...)"
// over the same column set, key first. Used by the upsert-by-name fallback
// when the UPDATE matched no row.
func (u *Update) InsertSQL(table, keyCol string, key interface{}) (string, []interface{}) {
	cols := append([]string{keyCol}, u.cols...)
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return sql, append([]interface{}{key}, u.args...)
}

// Filter accumulates WHERE predicates shared by a count query and its page
// query, so total always reflects the full filtered set independent of the
// page window.
type Filter struct {
	table   string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

// NewFilter creates a Filter for the given table and select column list.
func NewFilter(table, cols string) *Filter {
	return &Filter{table: table, cols: cols, idx: 1}
}

// Add appends a predicate. clause must contain exactly one %d placeholder for
// the positional parameter index, e.g. "estado_cirugia = $%d".
func (f *Filter) Add(clause string, arg interface{}) *Filter {
	f.where += " AND " + fmt.Sprintf(clause, f.idx)
	f.args = append(f.args, arg)
	f.idx++
	return f
}

// OrderBy sets the ORDER BY clause (without the keyword).
func (f *Filter) OrderBy(orderBy string) *Filter {
	f.orderBy = orderBy
	return f
}

// CountSQL returns the count query over the filtered set.
func (f *Filter) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", f.table, f.where)
}

// CountArgs returns the arguments for the count query.
func (f *Filter) CountArgs() []interface{} {
	return f.args
}

// DataSQL returns the page query with deterministic ordering and
// LIMIT/OFFSET bound as the trailing parameters.
func (f *Filter) DataSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", f.cols, f.table, f.where)
	if f.orderBy != "" {
		sql += " ORDER BY " + f.orderBy
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", f.idx, f.idx+1)
	return sql
}

// DataArgs returns the page query arguments (filter args + limit + offset).
func (f *Filter) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(f.args)+2)
	copy(result, f.args)
	result[len(f.args)] = limit
	result[len(f.args)+1] = offset
	return result
}
