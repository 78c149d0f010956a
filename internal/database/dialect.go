package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Supported values of DB_DRIVER.
const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// dialect implements query.Dialect and carries the DDL types used by
// EnsureSchema.
type dialect struct {
	name          string
	idType        string // type of the auto-assigned id column
	idConstraints string
	keyType       string // text type usable in UNIQUE constraints
	textType      string
	timeType      string
	returning     bool
	unique        func(error) bool
}

func (d *dialect) Name() string                     { return d.name }
func (d *dialect) InsertReturning() bool            { return d.returning }
func (d *dialect) IsUniqueViolation(err error) bool { return err != nil && d.unique(err) }

var sqliteDialect = &dialect{
	name:          DriverSQLite,
	idType:        "INTEGER",
	idConstraints: "PRIMARY KEY AUTOINCREMENT",
	keyType:       "TEXT",
	textType:      "TEXT",
	timeType:      "TEXT",
	unique: func(err error) bool {
		var se sqlite3.Error
		if !errors.As(err, &se) {
			return false
		}
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	},
}

// mysqlDialect expects the session to run with ANSI_QUOTES so that the
// builders' double-quoted identifiers are accepted.
var mysqlDialect = &dialect{
	name:          DriverMySQL,
	idType:        "BIGINT",
	idConstraints: "PRIMARY KEY AUTO_INCREMENT",
	keyType:       "VARCHAR(255)",
	textType:      "TEXT",
	timeType:      "DATETIME",
	unique: func(err error) bool {
		var me *mysql.MySQLError
		return errors.As(err, &me) && me.Number == 1062
	},
}

var postgresDialect = &dialect{
	name:          DriverPostgres,
	idType:        "BIGSERIAL",
	idConstraints: "PRIMARY KEY",
	keyType:       "TEXT",
	textType:      "TEXT",
	timeType:      "TIMESTAMP",
	returning:     true,
	unique: func(err error) bool {
		var pe *pgconn.PgError
		return errors.As(err, &pe) && pe.Code == "23505"
	},
}

func dialectFor(driver string) (*dialect, bool) {
	switch driver {
	case DriverSQLite, "sqlite", "":
		return sqliteDialect, true
	case DriverMySQL:
		return mysqlDialect, true
	case DriverPostgres, "pgx":
		return postgresDialect, true
	}
	return nil, false
}
