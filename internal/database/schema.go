package database

import (
	"context"
	"fmt"

	"github.com/iliyamo/appregistry/internal/query"
)

// Table names.
const (
	TableUsers        = "users"
	TableRoles        = "roles"
	TableApplications = "applications"
)

// EnsureSchema creates the users, applications and roles tables when they
// do not exist yet. It is safe to run on every start.
func EnsureSchema(ctx context.Context, db *DB) error {
	d := db.dialect
	stamp := "NOT NULL DEFAULT CURRENT_TIMESTAMP"

	tables := []*query.TableBuilder{
		query.CreateTable(db, TableUsers).IfNotExists().
			Column("id", d.idType, d.idConstraints).
			Column("username", d.keyType, "UNIQUE NOT NULL").
			Column("password", d.textType, "NOT NULL").
			Column("email", d.keyType, "UNIQUE NOT NULL").
			Column("role_id", "INTEGER", "NOT NULL DEFAULT 1").
			Column("created_at", d.timeType, stamp).
			Column("updated_at", d.timeType, stamp),
		query.CreateTable(db, TableApplications).IfNotExists().
			Column("id", d.idType, d.idConstraints).
			Column("name", d.keyType, "UNIQUE NOT NULL").
			Column("version", d.keyType, "NOT NULL").
			Column("type", d.keyType, "NOT NULL").
			Column("download_url", d.textType, "NOT NULL").
			Column("created_by", "INTEGER", "NOT NULL").
			Column("created_at", d.timeType, stamp).
			Column("updated_by", "INTEGER", "NOT NULL").
			Column("updated_at", d.timeType, stamp),
		query.CreateTable(db, TableRoles).IfNotExists().
			Column("id", d.idType, d.idConstraints).
			Column("name", d.keyType, "UNIQUE NOT NULL"),
	}
	for _, t := range tables {
		if err := t.Execute(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
