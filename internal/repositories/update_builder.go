package repositories

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoUpdatableFields is returned when an update request carries no
// recognized columns.
var ErrNoUpdatableFields = errors.New("no updatable fields provided")

// updateBuilder assembles a parameterized UPDATE statement from a set of
// (column, value) pairs checked against a per-table allow-list. Columns
// never reach the SQL text unless they are on the list, and values are
// always bound through placeholders.
type updateBuilder struct {
	table   string
	allowed map[string]bool
	sets    []string
	args    []interface{}
}

func newUpdateBuilder(table string, allowedColumns ...string) *updateBuilder {
	allowed := make(map[string]bool, len(allowedColumns))
	for _, col := range allowedColumns {
		allowed[col] = true
	}
	return &updateBuilder{table: table, allowed: allowed}
}

// Set registers column = value. Unknown columns are ignored so callers can
// feed the raw request field map through without pre-filtering.
func (b *updateBuilder) Set(column string, value interface{}) *updateBuilder {
	if !b.allowed[column] {
		return b
	}
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
	return b
}

// SetRaw registers a raw SET expression with one bound value, for additive
// updates like "quantity = quantity + $n". The expression must contain a
// single %d placeholder index marker.
func (b *updateBuilder) SetRaw(expr string, value interface{}) *updateBuilder {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf(expr, len(b.args)))
	return b
}

func (b *updateBuilder) Empty() bool {
	return len(b.sets) == 0
}

// Build finalizes the statement with a WHERE id = $n clause and RETURNING
// list. Returns ErrNoUpdatableFields when nothing was set.
func (b *updateBuilder) Build(id interface{}, returning string) (string, []interface{}, error) {
	if b.Empty() {
		return "", nil, ErrNoUpdatableFields
	}
	b.args = append(b.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s, updated_at = NOW() WHERE id = $%d",
		b.table, strings.Join(b.sets, ", "), len(b.args))
	if returning != "" {
		query += " RETURNING " + returning
	}
	return query, b.args, nil
}
