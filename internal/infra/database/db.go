package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

//go:embed schema_sqlite.sql
var sqliteSchema string

//go:embed schema_postgres.sql
var postgresSchema string

// DB is a database handle that knows which SQL dialect it speaks.
// Repositories write queries with ? placeholders and rebind them.
type DB struct {
	*sql.DB
	driver string
}

// NewConnection opens a database for driver ("sqlite3" or "postgres"),
// pings it and applies the schema.
func NewConnection(ctx context.Context, driver, dataSourceName string) (*DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
		db.SetMaxIdleConns(defaultMaxIdleConns)
		db.SetConnMaxLifetime(defaultConnMaxLifetime)
		db.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn := &DB{DB: db, driver: driver}
	if err := conn.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return conn, nil
}

// Driver returns the driver name the handle was opened with.
func (d *DB) Driver() string {
	return d.driver
}

func (d *DB) migrate(ctx context.Context) error {
	if d.driver == DriverSQLite {
		pragmas := []string{
			"PRAGMA journal_mode = WAL",
			"PRAGMA busy_timeout = 5000",
			"PRAGMA foreign_keys = ON",
		}
		for _, pragma := range pragmas {
			if _, err := d.ExecContext(ctx, pragma); err != nil {
				return fmt.Errorf("failed to execute %q: %w", pragma, err)
			}
		}
		if _, err := d.ExecContext(ctx, sqliteSchema); err != nil {
			return fmt.Errorf("failed to apply sqlite schema: %w", err)
		}
		return nil
	}
	if _, err := d.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to apply postgres schema: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $N for PostgreSQL.
func (d *DB) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
