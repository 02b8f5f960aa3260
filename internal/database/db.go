package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/medisafe/internal/config"
)

// DB wraps a connection pool together with the SQL dialect of its backend.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open connects to the backend selected by cfg.DBDriver and verifies the
// connection.
func Open(cfg config.Config) (*DB, error) {
	dialect, err := ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	return OpenDSN(dialect, DSN(cfg))
}

// DSN builds the driver-specific connection string.  An explicit DB_DSN wins.
func DSN(cfg config.Config) string {
	if cfg.DBDSN != "" {
		return cfg.DBDSN
	}
	switch cfg.DBDriver {
	case "postgres":
		port := cfg.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.DBUser, cfg.DBPass, cfg.DBHost, port, cfg.DBName)
	case "mysql":
		port := cfg.DBPort
		if port == "" {
			port = "3306"
		}
		auth := cfg.DBUser
		if cfg.DBPass != "" {
			auth = fmt.Sprintf("%s:%s", cfg.DBUser, cfg.DBPass)
		}
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		// clientFoundRows=true -> RowsAffected counts matched rows, not changed ones
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
			auth, cfg.DBHost, port, cfg.DBName)
	default:
		return SQLiteDSN(cfg.SQLitePath)
	}
}

// SQLiteDSN returns a modernc DSN for a database file with foreign keys
// enforced (cascading deletes depend on it).
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// OpenDSN opens a pool for an explicit dialect and DSN.
func OpenDSN(dialect Dialect, dsn string) (*DB, error) {
	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	if dialect == SQLite {
		// one writer; also keeps in-memory databases alive between calls
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{DB: db, Dialect: dialect}, nil
}

// Rebind rewrites '?' placeholders for the backend.
func (db *DB) Rebind(query string) string {
	return db.Dialect.Rebind(query)
}

// InsertID executes an INSERT and returns the generated primary key.
// PostgreSQL has no LastInsertId, so the statement gets a RETURNING clause.
func (db *DB) InsertID(ctx context.Context, query string, args ...any) (int64, error) {
	if db.Dialect == Postgres {
		var id int64
		err := db.QueryRowContext(ctx, db.Rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
func (db *DB) IsUniqueViolation(err error) bool {
	return db.Dialect.IsUniqueViolation(err)
}
