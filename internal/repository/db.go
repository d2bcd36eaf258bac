package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// schemas holds the weather table DDL per driver. There is no migration
// versioning: the table is created if it does not exist and left alone otherwise.
var schemas = map[string]string{
	"sqlite": `
        CREATE TABLE IF NOT EXISTS weather (
            id          INTEGER PRIMARY KEY AUTOINCREMENT,
            city        TEXT UNIQUE NOT NULL,
            temperature REAL NOT NULL,
            description TEXT NOT NULL
        );
    `,
	"pgx": `
        CREATE TABLE IF NOT EXISTS weather (
            id          BIGSERIAL PRIMARY KEY,
            city        TEXT UNIQUE NOT NULL,
            temperature DOUBLE PRECISION NOT NULL,
            description TEXT NOT NULL
        );
    `,
}

// OpenDB opens the connection pool, checks it is reachable and makes sure the
// weather table exists. The handle is closed again if any step fails.
func OpenDB(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if driver == "sqlite" {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	db.SetConnMaxLifetime(time.Minute * 5)
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(10)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the weather table for the handle's driver if absent.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	ddl, ok := schemas[db.DriverName()]
	if !ok {
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create weather table: %w", err)
	}
	return nil
}

// sqliteDSN turns a bare file path into a DSN with WAL and a busy timeout so
// concurrent upserts wait for the write lock instead of failing.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}
