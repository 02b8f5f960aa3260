package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

func (d Dialect) gooseDialect() goose.Dialect {
	switch d {
	case Postgres:
		return goose.DialectPostgres
	case MySQL:
		return goose.DialectMySQL
	default:
		return goose.DialectSQLite3
	}
}

// newProvider is a seam for tests that must not touch a real schema.
var newProvider = func(dialect goose.Dialect, db *sql.DB, fsys fs.FS) (*goose.Provider, error) {
	return goose.NewProvider(dialect, db, fsys)
}

// MigrationFS returns the embedded migrations for the dialect.
func MigrationFS(d Dialect) (fs.FS, error) {
	return fs.Sub(migrations, "migrations/"+string(d))
}

// Migrate applies all pending migrations for the backend and returns the
// number of migrations that ran.
func Migrate(ctx context.Context, db *DB) (int, error) {
	fsys, err := MigrationFS(db.Dialect)
	if err != nil {
		return 0, fmt.Errorf("migrations for %s: %w", db.Dialect, err)
	}
	p, err := newProvider(db.Dialect.gooseDialect(), db.DB, fsys)
	if err != nil {
		return 0, fmt.Errorf("migration provider: %w", err)
	}
	results, err := p.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("migrate up: %w", err)
	}
	return len(results), nil
}
