package database

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/appregistry/internal/config"
	"github.com/iliyamo/appregistry/internal/query"
)

// DB is the store handle passed to the query builders.
type DB struct {
	*sqlx.DB
	dialect *dialect
}

// Dialect implements query.Store.
func (db *DB) Dialect() query.Dialect { return db.dialect }

// Open connects to the configured store and verifies the connection.
func Open(cfg config.DBConfig) (*DB, error) {
	d, ok := dialectFor(cfg.Driver)
	if !ok {
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}

	var (
		x   *sqlx.DB
		err error
	)
	switch d {
	case sqliteDialect:
		x, err = openSQLite(cfg.Path)
	case mysqlDialect:
		x, err = openMySQL(cfg)
	case postgresDialect:
		x, err = openPostgres(cfg.URL)
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := x.PingContext(ctx); err != nil {
		_ = x.Close()
		return nil, fmt.Errorf("database: ping %s: %w", d.name, err)
	}
	return &DB{DB: x, dialect: d}, nil
}

// OpenSQLite opens a SQLite file directly; tests and the provisioning tool
// use it.
func OpenSQLite(path string) (*DB, error) {
	return Open(config.DBConfig{Driver: DriverSQLite, Path: path})
}

func openSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database: DB_PATH is not set")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("database: create %s: %w", dir, err)
		}
	}
	x, err := sqlx.Open("sqlite3", "file:"+path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// single writer; concurrent requests queue on the one connection
	x.SetMaxOpenConns(1)
	return x, nil
}

func openMySQL(cfg config.DBConfig) (*sqlx.DB, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Pass
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
	mc.DBName = cfg.Name
	mc.Loc = time.UTC
	// RowsAffected must count matched rows so an update that changes
	// nothing is not mistaken for a missing row.
	mc.ClientFoundRows = true
	mc.Params = map[string]string{
		"charset":  "utf8mb4",
		"sql_mode": "'ANSI_QUOTES,STRICT_TRANS_TABLES'",
	}
	return sqlx.Open("mysql", mc.FormatDSN())
}

func openPostgres(dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database: DATABASE_URL is not set")
	}
	pc, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("database: parse DSN: %w", err)
	}
	pc.ConnectTimeout = 5 * time.Second
	return sqlx.NewDb(stdlib.OpenDB(*pc), "pgx"), nil
}
