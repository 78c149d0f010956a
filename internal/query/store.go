// Package query builds and runs parameterized SQL statements. Builders
// accumulate fragments, Build() freezes them into a Statement, and the
// Execute/Fetch methods run the statement against a Store. Values are never
// inlined into the statement text.
package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/appregistry/internal/apperr"
)

// ErrUniqueViolation is wrapped into the validation error returned when the
// store rejects a write because of a unique constraint.
var ErrUniqueViolation = errors.New("unique constraint violated")

// TimeLayout is the text form timestamps are written and read in.
const TimeLayout = "2006-01-02 15:04:05"

// Dialect carries the per-engine knowledge the builders need.
type Dialect interface {
	Name() string
	// InsertReturning reports whether new ids come back through
	// INSERT ... RETURNING instead of LastInsertId.
	InsertReturning() bool
	IsUniqueViolation(err error) bool
}

// Store is the subset of *sqlx.DB the builders run against, plus the
// dialect of the underlying engine.
type Store interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	QueryRowxContext(ctx context.Context, query string, args ...any) *sqlx.Row
	Rebind(query string) string
	Dialect() Dialect
}

// Statement is a finished, immutable SQL statement with its bound values
// in placeholder order.
type Statement struct {
	SQL  string
	Args []Value
}

func (s Statement) args() []any {
	out := make([]any, len(s.Args))
	for i, v := range s.Args {
		out[i] = v
	}
	return out
}

// Row is one result row keyed by column name. Text comes back as string,
// integers as int64, floats as float64 and timestamps as TimeLayout text.
type Row map[string]any

// Int64 returns the column as an integer, or 0 when absent or not numeric.
func (r Row) Int64(col string) int64 {
	switch t := r[col].(type) {
	case int64:
		return t
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// String returns the column as text, or "" when absent or null.
func (r Row) String(col string) string {
	switch t := r[col].(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// Ident quotes an identifier, doubling embedded quote characters.
func Ident(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.UTC().Format(TimeLayout)
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	}
	return v
}

func scanRow(rows *sqlx.Rows) (Row, error) {
	m := map[string]any{}
	if err := rows.MapScan(m); err != nil {
		return nil, err
	}
	row := make(Row, len(m))
	for k, v := range m {
		row[k] = normalize(v)
	}
	return row, nil
}

// storeError classifies an engine error, turning unique violations into
// validation errors through the dialect's structured check.
func storeError(store Store, err error) error {
	if d := store.Dialect(); d != nil && d.IsUniqueViolation(err) {
		return apperr.New(apperr.KindValidation, ErrUniqueViolation.Error(), fmt.Errorf("%w: %v", ErrUniqueViolation, err))
	}
	return apperr.Store(err)
}

func exec(ctx context.Context, store Store, st Statement) (sql.Result, error) {
	res, err := store.ExecContext(ctx, store.Rebind(st.SQL), st.args()...)
	if err != nil {
		return nil, storeError(store, err)
	}
	return res, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
