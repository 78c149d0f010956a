package query

import (
	"context"
	"strings"

	"github.com/iliyamo/appregistry/internal/apperr"
)

type columnDef struct {
	name        string
	typ         string
	constraints string
}

// TableBuilder accumulates a CREATE TABLE statement. Table and column names
// are trusted constants from the schema, not request input.
type TableBuilder struct {
	store       Store
	name        string
	ifNotExists bool
	columns     []columnDef
	primaryKey  []string
	constraints []string
}

// CreateTable starts a CREATE TABLE statement for name.
func CreateTable(store Store, name string) *TableBuilder {
	return &TableBuilder{store: store, name: name}
}

func (b *TableBuilder) IfNotExists() *TableBuilder {
	b.ifNotExists = true
	return b
}

// Column adds a column definition; constraints is raw SQL such as
// "UNIQUE NOT NULL" and may be empty.
func (b *TableBuilder) Column(name, typ, constraints string) *TableBuilder {
	b.columns = append(b.columns, columnDef{name: name, typ: typ, constraints: constraints})
	return b
}

// PrimaryKey adds a table-level PRIMARY KEY over cols.
func (b *TableBuilder) PrimaryKey(cols ...string) *TableBuilder {
	b.primaryKey = cols
	return b
}

// Constraint adds a raw table-level constraint.
func (b *TableBuilder) Constraint(c string) *TableBuilder {
	b.constraints = append(b.constraints, c)
	return b
}

func (b *TableBuilder) Build() (Statement, error) {
	if strings.TrimSpace(b.name) == "" {
		return Statement{}, apperr.Statement("table name is required")
	}
	if len(b.columns) == 0 {
		return Statement{}, apperr.Statement("at least one column is required")
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if b.ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(b.name)
	sb.WriteString(" (")

	defs := make([]string, 0, len(b.columns)+len(b.constraints)+1)
	for _, c := range b.columns {
		def := c.name + " " + c.typ
		if c.constraints != "" {
			def += " " + c.constraints
		}
		defs = append(defs, def)
	}
	if len(b.primaryKey) > 0 {
		defs = append(defs, "PRIMARY KEY ("+strings.Join(b.primaryKey, ", ")+")")
	}
	defs = append(defs, b.constraints...)

	sb.WriteString(strings.Join(defs, ", "))
	sb.WriteString(")")
	return Statement{SQL: sb.String()}, nil
}

// Execute builds and runs the statement.
func (b *TableBuilder) Execute(ctx context.Context) error {
	st, err := b.Build()
	if err != nil {
		return err
	}
	_, err = exec(ctx, b.store, st)
	return err
}
