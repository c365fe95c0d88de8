// Package storage persists exercises, routines, training sessions, and the
// ongoing-session record. It runs on SQLite by default; a postgres:// DSN
// switches the same repository code to PostgreSQL via pgx.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	valens "github.com/Ranveer112/valens"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a sql.DB and provides repository methods.
type DB struct {
	sql    *sql.DB
	driver string
}

// New opens the database named by dsn. "postgres://..." selects pgx;
// anything else is treated as "sqlite://path" or a bare SQLite path.
func New(ctx context.Context, dsn string) (*DB, error) {
	driver, dataSource := splitDSN(dsn)
	db, err := sql.Open(driver, dataSource)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if driver == "sqlite" {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling foreign keys: %w", err)
		}
	}
	return &DB{sql: db, driver: driver}, nil
}

// Close closes the underlying connection pool.
func (db *DB) Close() error {
	return db.sql.Close()
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(dsn string) error {
	src, err := iofs.New(valens.MigrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dsn))
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func splitDSN(dsn string) (driver, dataSource string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return "pgx", dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://")
	default:
		return "sqlite", dsn
	}
}

func migrateURL(dsn string) string {
	driver, dataSource := splitDSN(dsn)
	if driver == "pgx" {
		return dsn
	}
	return "sqlite://" + dataSource
}

// rebind rewrites ? placeholders to $N for PostgreSQL. Repository queries
// are written with ? and stay portable across both backends.
func (db *DB) rebind(query string) string {
	if db.driver != "pgx" {
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

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.sql.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.sql.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.sql.QueryRowContext(ctx, db.rebind(query), args...)
}

// nextID allocates the next ID for a table inside the given transaction.
// Explicit allocation keeps ID generation identical on both backends.
func (db *DB) nextID(ctx context.Context, tx *sql.Tx, table string) (uint32, error) {
	var id uint32
	query := db.rebind("SELECT COALESCE(MAX(id), 0) + 1 FROM " + table)
	if err := tx.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("allocating %s id: %w", table, err)
	}
	return id, nil
}
