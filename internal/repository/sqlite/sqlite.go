// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C compiler
// installed and cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere Go works.
//
// SCHEMA:
// The schema lives in migrations/*.sql, embedded into the binary and applied
// with goose on every start. goose records applied versions in its own table,
// so restarting against an existing file is a no-op.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/markdown-blog/internal/repository"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// compile-time check that *DB serves both repositories
var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and migrates it to the latest schema.
//
// PRAGMAS:
// database/sql hands out pooled connections, and SQLite pragmas are
// per-connection. They are therefore passed in the DSN so the driver applies
// them to every connection it opens:
//   - foreign_keys(1): posts.author must reference an existing user
//   - journal_mode(WAL): readers don't block the writer
//   - busy_timeout(5000): concurrent writers wait instead of failing with SQLITE_BUSY
func New(ctx context.Context, dbPath string) (*DB, error) {
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping verifies the connection actually works.
	// Without this, a bad path or permissions issue would only surface
	// on the first query — which is much harder to debug.
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate applies every pending embedded migration.
func (db *DB) migrate(ctx context.Context) error {
	migrations, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db.conn, migrations)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate value
// for a UNIQUE column.
func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// Primary result code only (extended codes disabled on this connection).
	return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
}
