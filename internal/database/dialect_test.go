package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/medisafe/internal/config"
)

func TestParseDialect(t *testing.T) {
	for in, want := range map[string]Dialect{
		"sqlite": SQLite, "SQLite3": SQLite,
		"postgres": Postgres, "postgresql": Postgres, "pgx": Postgres,
		"mysql": MySQL,
	} {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDialect("oracle")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a=? AND b=?"
	assert.Equal(t, "SELECT * FROM t WHERE a=$1 AND b=$2", Postgres.Rebind(q))
	assert.Equal(t, q, MySQL.Rebind(q))
	assert.Equal(t, q, SQLite.Rebind(q))
}

func TestIsUniqueViolation(t *testing.T) {
	pg := &pgconn.PgError{Code: "23505"}
	my := &mysql.MySQLError{Number: 1062}

	assert.True(t, Postgres.IsUniqueViolation(fmt.Errorf("insert: %w", pg)))
	assert.False(t, Postgres.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, MySQL.IsUniqueViolation(my))
	assert.False(t, MySQL.IsUniqueViolation(&mysql.MySQLError{Number: 1452}))
	assert.True(t, SQLite.IsUniqueViolation(errors.New("UNIQUE constraint failed: users.username")))
	assert.False(t, SQLite.IsUniqueViolation(nil))
	assert.False(t, SQLite.IsUniqueViolation(errors.New("disk I/O error")))
}

func TestDSN(t *testing.T) {
	cfg := config.Config{DBDriver: "mysql", DBUser: "app", DBPass: "pw", DBHost: "db", DBName: "medisafe"}
	assert.Equal(t,
		"app:pw@tcp(db:3306)/medisafe?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
		DSN(cfg))

	cfg = config.Config{DBDriver: "postgres", DBUser: "app", DBPass: "pw", DBHost: "db", DBPort: "6543", DBName: "medisafe"}
	assert.Equal(t, "postgres://app:pw@db:6543/medisafe?sslmode=disable", DSN(cfg))

	cfg = config.Config{DBDriver: "sqlite", SQLitePath: "data.db"}
	assert.Equal(t, SQLiteDSN("data.db"), DSN(cfg))

	cfg.DBDSN = "explicit"
	assert.Equal(t, "explicit", DSN(cfg))
}
