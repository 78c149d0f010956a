package query

import (
	"context"
	"strconv"
	"strings"

	"github.com/iliyamo/appregistry/internal/apperr"
)

// SelectBuilder accumulates a SELECT statement. Conditions are raw SQL
// fragments with ? placeholders; their params are bound in the order the
// fragments were added.
type SelectBuilder struct {
	store     Store
	columns   []string
	table     string
	joins     []string
	conds     []string
	params    []Value
	groupBy   string
	orderBy   string
	limit     int
	hasLimit  bool
	offset    int
	hasOffset bool
}

// Select starts a SELECT statement. Columns default to *.
func Select(store Store) *SelectBuilder {
	return &SelectBuilder{store: store}
}

func (b *SelectBuilder) Columns(cols ...string) *SelectBuilder {
	b.columns = cols
	return b
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

// Join adds "<KIND> JOIN table ON on", e.g. Join("left", "roles r", "r.id = u.role_id").
func (b *SelectBuilder) Join(kind, table, on string) *SelectBuilder {
	b.joins = append(b.joins, strings.ToUpper(kind)+" JOIN "+table+" ON "+on)
	return b
}

func (b *SelectBuilder) Where(cond string, params ...Value) *SelectBuilder {
	b.conds = append(b.conds, cond)
	b.params = append(b.params, params...)
	return b
}

func (b *SelectBuilder) GroupBy(col string) *SelectBuilder {
	b.groupBy = col
	return b
}

func (b *SelectBuilder) OrderBy(col string) *SelectBuilder {
	b.orderBy = col
	return b
}

func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.limit, b.hasLimit = n, true
	return b
}

func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	b.offset, b.hasOffset = n, true
	return b
}

func (b *SelectBuilder) Build() (Statement, error) {
	if strings.TrimSpace(b.table) == "" {
		return Statement{}, apperr.Statement("table name is required")
	}
	cols := "*"
	if len(b.columns) > 0 {
		cols = strings.Join(b.columns, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + cols + " FROM " + b.table)
	if len(b.joins) > 0 {
		sb.WriteString(" " + strings.Join(b.joins, " "))
	}
	sb.WriteString(whereClause(b.conds))
	if b.groupBy != "" {
		sb.WriteString(" GROUP BY " + b.groupBy)
	}
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY " + b.orderBy)
	}
	if b.hasLimit {
		sb.WriteString(" LIMIT " + strconv.Itoa(b.limit))
	}
	if b.hasOffset {
		sb.WriteString(" OFFSET " + strconv.Itoa(b.offset))
	}

	args := make([]Value, len(b.params))
	copy(args, b.params)
	return Statement{SQL: sb.String(), Args: args}, nil
}

// FetchAll runs the statement and returns every row in order.
func (b *SelectBuilder) FetchAll(ctx context.Context) ([]Row, error) {
	st, err := b.Build()
	if err != nil {
		return nil, err
	}
	rows, err := b.store.QueryxContext(ctx, b.store.Rebind(st.SQL), st.args()...)
	if err != nil {
		return nil, storeError(b.store, err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, apperr.Store(err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Store(err)
	}
	return out, nil
}

// Fetch runs the statement and returns the first row. The bool is false
// when the result set is empty.
func (b *SelectBuilder) Fetch(ctx context.Context) (Row, bool, error) {
	st, err := b.Build()
	if err != nil {
		return nil, false, err
	}
	rows, err := b.store.QueryxContext(ctx, b.store.Rebind(st.SQL), st.args()...)
	if err != nil {
		return nil, false, storeError(b.store, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, apperr.Store(err)
		}
		return nil, false, nil
	}
	row, err := scanRow(rows)
	if err != nil {
		return nil, false, apperr.Store(err)
	}
	return row, true, nil
}
