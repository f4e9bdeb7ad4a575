// Package postgres implements the repository interfaces on PostgreSQL through
// the pgx database/sql driver. It is selected with database.driver=postgres.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sakif/markdown-blog/internal/repository"
)

// uniqueViolation is SQLSTATE unique_violation.
const uniqueViolation = "23505"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

var _ repository.Store = (*DB)(nil)

// DBTX is the subset of *sql.DB the repositories use. *sql.Tx satisfies it too.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DB struct {
	conn *sql.DB
	db   DBTX
}

// New connects to dsn and migrates the schema.
func New(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return newDB(conn), nil
}

func newDB(conn *sql.DB) *DB {
	return &DB{conn: conn, db: conn}
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func migrate(ctx context.Context, conn *sql.DB) error {
	migrations, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, conn, migrations)
	if err != nil {
		return err
	}

	_, err = provider.Up(ctx)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
