package query

import (
	"context"
	"strings"

	"github.com/iliyamo/appregistry/internal/apperr"
)

// DeleteBuilder accumulates a DELETE.
type DeleteBuilder struct {
	store  Store
	table  string
	conds  []string
	params []Value
}

func Delete(store Store) *DeleteBuilder {
	return &DeleteBuilder{store: store}
}

func (b *DeleteBuilder) From(table string) *DeleteBuilder {
	b.table = table
	return b
}

func (b *DeleteBuilder) Where(cond string, params ...Value) *DeleteBuilder {
	b.conds = append(b.conds, cond)
	b.params = append(b.params, params...)
	return b
}

func (b *DeleteBuilder) Build() (Statement, error) {
	if strings.TrimSpace(b.table) == "" {
		return Statement{}, apperr.Statement("table name is required")
	}
	args := make([]Value, len(b.params))
	copy(args, b.params)
	return Statement{SQL: "DELETE FROM " + b.table + whereClause(b.conds), Args: args}, nil
}

// Execute runs the delete and returns how many rows it removed. Removing
// nothing is not an error here; callers decide what a miss means.
func (b *DeleteBuilder) Execute(ctx context.Context) (int64, error) {
	st, err := b.Build()
	if err != nil {
		return 0, err
	}
	res, err := exec(ctx, b.store, st)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Store(err)
	}
	return n, nil
}
