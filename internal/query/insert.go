package query

import (
	"context"
	"strings"

	"github.com/iliyamo/appregistry/internal/apperr"
)

// InsertBuilder accumulates a single-row INSERT.
type InsertBuilder struct {
	store   Store
	table   string
	idCol   string
	columns []string
	values  []Value
}

// Insert starts an INSERT statement. The generated id is read from the
// "id" column unless IDColumn says otherwise.
func Insert(store Store) *InsertBuilder {
	return &InsertBuilder{store: store, idCol: "id"}
}

func (b *InsertBuilder) Into(table string) *InsertBuilder {
	b.table = table
	return b
}

func (b *InsertBuilder) Columns(cols ...string) *InsertBuilder {
	b.columns = cols
	return b
}

func (b *InsertBuilder) Values(vals ...Value) *InsertBuilder {
	b.values = vals
	return b
}

func (b *InsertBuilder) IDColumn(col string) *InsertBuilder {
	b.idCol = col
	return b
}

func (b *InsertBuilder) returning() bool {
	if b.store == nil {
		return false
	}
	d := b.store.Dialect()
	return d != nil && d.InsertReturning()
}

func (b *InsertBuilder) Build() (Statement, error) {
	if strings.TrimSpace(b.table) == "" || len(b.columns) == 0 || len(b.values) == 0 {
		return Statement{}, apperr.Statement("table, columns, and values must be specified")
	}
	if len(b.columns) != len(b.values) {
		return Statement{}, apperr.Validation("number of columns and values must match")
	}

	cols := make([]string, len(b.columns))
	marks := make([]string, len(b.columns))
	for i, c := range b.columns {
		cols[i] = Ident(c)
		marks[i] = "?"
	}
	sql := "INSERT INTO " + Ident(b.table) + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
	if b.returning() {
		sql += " RETURNING " + Ident(b.idCol)
	}

	args := make([]Value, len(b.values))
	copy(args, b.values)
	return Statement{SQL: sql, Args: args}, nil
}

// Execute runs the insert and returns the id assigned to the new row.
func (b *InsertBuilder) Execute(ctx context.Context) (int64, error) {
	st, err := b.Build()
	if err != nil {
		return 0, err
	}
	if b.returning() {
		var id int64
		if err := b.store.QueryRowxContext(ctx, b.store.Rebind(st.SQL), st.args()...).Scan(&id); err != nil {
			return 0, storeError(b.store, err)
		}
		return id, nil
	}
	res, err := exec(ctx, b.store, st)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Store(err)
	}
	return id, nil
}
