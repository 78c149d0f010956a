package query

import (
	"context"
	"sort"
	"strings"

	"github.com/iliyamo/appregistry/internal/apperr"
)

type assignment struct {
	col string
	val Value
}

// UpdateBuilder accumulates an UPDATE. SET values are bound before WHERE
// params.
type UpdateBuilder struct {
	store  Store
	table  string
	sets   []assignment
	conds  []string
	params []Value
}

// Update starts an UPDATE statement.
func Update(store Store) *UpdateBuilder {
	return &UpdateBuilder{store: store}
}

func (b *UpdateBuilder) Table(table string) *UpdateBuilder {
	b.table = table
	return b
}

// Set assigns col. Setting the same column twice keeps the position of the
// first call and the value of the last.
func (b *UpdateBuilder) Set(col string, v Value) *UpdateBuilder {
	for i := range b.sets {
		if b.sets[i].col == col {
			b.sets[i].val = v
			return b
		}
	}
	b.sets = append(b.sets, assignment{col: col, val: v})
	return b
}

// SetMap assigns every entry of values in sorted column order.
func (b *UpdateBuilder) SetMap(values map[string]Value) *UpdateBuilder {
	cols := make([]string, 0, len(values))
	for c := range values {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		b.Set(c, values[c])
	}
	return b
}

func (b *UpdateBuilder) Where(cond string, params ...Value) *UpdateBuilder {
	b.conds = append(b.conds, cond)
	b.params = append(b.params, params...)
	return b
}

func (b *UpdateBuilder) Build() (Statement, error) {
	if strings.TrimSpace(b.table) == "" {
		return Statement{}, apperr.Statement("table name is required")
	}
	if len(b.sets) == 0 {
		return Statement{}, apperr.Statement("values to update are required")
	}

	clauses := make([]string, len(b.sets))
	args := make([]Value, 0, len(b.sets)+len(b.params))
	for i, a := range b.sets {
		clauses[i] = Ident(a.col) + " = ?"
		args = append(args, a.val)
	}
	args = append(args, b.params...)

	sql := "UPDATE " + b.table + " SET " + strings.Join(clauses, ", ") + whereClause(b.conds)
	return Statement{SQL: sql, Args: args}, nil
}

// Execute runs the update. A statement that matches no row fails with a
// not-found error rather than succeeding silently.
func (b *UpdateBuilder) Execute(ctx context.Context) error {
	st, err := b.Build()
	if err != nil {
		return err
	}
	res, err := exec(ctx, b.store, st)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Store(err)
	}
	if n == 0 {
		return apperr.NotFound("no rows were updated")
	}
	return nil
}
