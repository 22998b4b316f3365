package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/caseseam/internal/seed"
	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// sqlitePragmas apply to every connection of a local file.
const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"

// lockRetry is how often a blocked bootstrap retries the file lock.
const lockRetry = 50 * time.Millisecond

// OpenSQLite opens the SQLite file at path, creating it and its directory
// if needed. The schema is created and seeded on first use while holding
// an exclusive lock on path+".lock", so concurrent first opens seed once.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, types.ErrSQLitePathEmpty
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("lock %s: not acquired", path)
	}
	defer lock.Unlock()

	db, err := sql.Open(SQLite.driver, path+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := newStore(db, SQLite, opts)
	if err := s.bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenPostgres connects to the Postgres database at dsn, creating and
// seeding the cases table when absent or empty.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open postgres: empty dsn")
	}
	db, err := sql.Open(Postgres.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := newStore(db, Postgres, opts)
	if err := s.bootstrap(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// bootstrap creates the schema and seeds an empty table. It is idempotent.
func (s *Store) bootstrap(ctx context.Context) error {
	for _, stmt := range s.b.d.ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	if s.b.d.seedLock != "" {
		if _, err := tx.ExecContext(ctx, s.b.d.seedLock); err != nil {
			return fmt.Errorf("seed lock: %w", err)
		}
	}

	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return fmt.Errorf("count cases: %w", err)
	}
	if n > 0 {
		s.logger.Debug("case store ready", "dialect", s.b.d.Name, "cases", n)
		return nil
	}

	cases := s.seed
	if cases == nil {
		cases = seed.Default(s.now)
	}
	for _, c := range cases {
		stmt, args, err := s.b.insert(c)
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("seed case: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	s.logger.Info("seeded case store", "dialect", s.b.d.Name, "cases", len(cases))
	return nil
}
