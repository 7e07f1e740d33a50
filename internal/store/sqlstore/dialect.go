package sqlstore

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
)

//go:embed schema_sqlite.sql
var schemaSQLite string

//go:embed schema_postgres.sql
var schemaPostgres string

// Driver names a supported database backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// dialect isolates the differences between the two backends.
type dialect struct {
	driver     Driver
	driverName string // database/sql driver name
	schema     string
	numbered   bool // $1, $2 placeholders instead of ?
}

func dialectFor(d Driver) (dialect, error) {
	switch d {
	case DriverSQLite, "":
		return dialect{driver: DriverSQLite, driverName: "sqlite", schema: schemaSQLite}, nil
	case DriverPostgres:
		return dialect{driver: DriverPostgres, driverName: "pgx", schema: schemaPostgres, numbered: true}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported driver: %s", d)
	}
}

// rebind rewrites ? placeholders for the dialect. Queries never contain a
// literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
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

// isUniqueViolation reports whether err is a unique or primary key conflict.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
