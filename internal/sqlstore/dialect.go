package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Dialect captures what differs between the SQL engines a Store can run
// on. Everything else, including the query shapes, is shared.
type Dialect struct {
	Name   string
	driver string
	format squirrel.PlaceholderFormat
	// substr is a format string taking a column name. It must yield a
	// byte-exact substring test with one ? placeholder for the term.
	substr string
	ddl    []string
	// lockRow is appended to the read that precedes an update.
	lockRow string
	// seedLock, when set, runs first inside the seeding transaction.
	seedLock string
	// readIsolation lets the count and the page of one ListCases share a
	// snapshot.
	readIsolation sql.IsolationLevel
}

// SQLite is the dialect of the embedded local file (modernc.org/sqlite).
// Write transactions begin IMMEDIATE, so the write lock is held from the
// first read and no row lock clause is needed. Read-only transactions begin
// DEFERRED and see one WAL snapshot.
var SQLite = Dialect{
	Name:   "sqlite",
	driver: "sqlite",
	format: squirrel.Question,
	substr: "instr(%s, ?) > 0",
	ddl: []string{
		`CREATE TABLE IF NOT EXISTS cases (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    patient_name TEXT NOT NULL,
    procedure_name TEXT NOT NULL,
    status TEXT NOT NULL,
    last_updated_utc TEXT NOT NULL,
    patient_name_folded TEXT NOT NULL,
    procedure_folded TEXT NOT NULL,
    status_folded TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_recent ON cases (last_updated_utc DESC, id ASC)`,
	},
}

// Postgres is the dialect of a server database reached through pgx.
var Postgres = Dialect{
	Name:   "postgres",
	driver: "pgx",
	format: squirrel.Dollar,
	substr: "strpos(%s, ?) > 0",
	ddl: []string{
		`CREATE TABLE IF NOT EXISTS cases (
    id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    patient_name TEXT NOT NULL,
    procedure_name TEXT NOT NULL,
    status TEXT NOT NULL,
    last_updated_utc TEXT NOT NULL,
    patient_name_folded TEXT NOT NULL,
    procedure_folded TEXT NOT NULL,
    status_folded TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_recent ON cases (last_updated_utc DESC, id ASC)`,
	},
	lockRow:       "FOR UPDATE",
	seedLock:      "SELECT pg_advisory_xact_lock(74657)",
	readIsolation: sql.LevelRepeatableRead,
}

func (d Dialect) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.format)
}

// contains returns the predicate matching a folded term against col.
func (d Dialect) contains(col, term string) squirrel.Sqlizer {
	return squirrel.Expr(fmt.Sprintf(d.substr, col), term)
}
