// Package sqlstore implements the case store over database/sql. The same
// Store serves the embedded SQLite file and an optional Postgres database;
// a Dialect carries the differences.
//
// Search runs against folded shadow columns written alongside each row,
// so matching follows query.Fold exactly on every engine.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// Compile-time interface check.
var _ types.CaseGateway = (*Store)(nil)

// timeLayout is fixed width so text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Store is a case store backed by a SQL database.
type Store struct {
	db     *sql.DB
	b      builder
	now    func() time.Time
	seed   []types.Case
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for LastUpdatedUTC.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSeed replaces the default dataset written into an empty database.
func WithSeed(cs []types.Case) Option {
	return func(s *Store) { s.seed = cs }
}

// WithLogger sets the logger for bootstrap events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func newStore(db *sql.DB, d Dialect, opts []Option) *Store {
	s := &Store{db: db, b: newBuilder(d), now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dialect returns the name of the SQL engine behind the store.
func (s *Store) Dialect() string { return s.b.d.Name }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// ListCases implements types.CaseGateway. The count and the page are read
// in one read-only transaction.
func (s *Store) ListCases(ctx context.Context, q types.ListQuery) (types.PagedResult, error) {
	if err := q.Validate(); err != nil {
		return types.PagedResult{}, err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return types.PagedResult{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: s.b.d.readIsolation})
	if err != nil {
		return types.PagedResult{}, fmt.Errorf("begin read: %w", err)
	}
	defer tx.Rollback()

	countSQL, countArgs, err := s.b.count(q)
	if err != nil {
		return types.PagedResult{}, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := tx.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return types.PagedResult{}, fmt.Errorf("count cases: %w", err)
	}

	res := types.PagedResult{Items: []types.Case{}, Total: total, Page: q.Page, PageSize: q.PageSize}
	if q.Offset() >= total {
		return res, nil
	}

	pageSQL, pageArgs, err := s.b.page(q)
	if err != nil {
		return types.PagedResult{}, fmt.Errorf("build page: %w", err)
	}
	rows, err := tx.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return types.PagedResult{}, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	items := make([]types.Case, 0, q.PageSize)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return types.PagedResult{}, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return types.PagedResult{}, fmt.Errorf("iterate cases: %w", err)
	}
	res.Items = items
	return res, nil
}

// UpdateStatus implements types.CaseGateway. The read of the previous
// timestamp and the write share one transaction.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) (types.Case, error) {
	st, err := types.ParseStatus(status)
	if err != nil {
		return types.Case{}, err
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return types.Case{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return types.Case{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	readSQL, readArgs, err := s.b.lastUpdated(id)
	if err != nil {
		return types.Case{}, fmt.Errorf("build read: %w", err)
	}
	var prevText string
	err = tx.QueryRowContext(ctx, readSQL, readArgs...).Scan(&prevText)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Case{}, types.ErrNotFound
	}
	if err != nil {
		return types.Case{}, fmt.Errorf("read case %d: %w", id, err)
	}
	prev, err := parseTime(prevText)
	if err != nil {
		return types.Case{}, err
	}

	next := types.NextTimestamp(prev, s.now())
	updSQL, updArgs, err := s.b.setStatus(id, st, formatTime(next))
	if err != nil {
		return types.Case{}, fmt.Errorf("build update: %w", err)
	}
	c, err := scanCase(tx.QueryRowContext(ctx, updSQL, updArgs...))
	if err != nil {
		return types.Case{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.Case{}, fmt.Errorf("commit update: %w", err)
	}
	return c, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCase(row scanner) (types.Case, error) {
	var (
		c      types.Case
		status string
		ts     string
	)
	if err := row.Scan(&c.ID, &c.PatientName, &c.Procedure, &status, &ts); err != nil {
		return types.Case{}, fmt.Errorf("scan case: %w", err)
	}
	st, err := types.ParseStatus(status)
	if err != nil {
		return types.Case{}, fmt.Errorf("case %d: stored status: %w", c.ID, err)
	}
	c.Status = st
	if c.LastUpdatedUTC, err = parseTime(ts); err != nil {
		return types.Case{}, err
	}
	return c, nil
}

func formatTime(t time.Time) string {
	return types.Timestamp(t).Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
