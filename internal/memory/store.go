// Package memory provides an in-process case store. It is the reference
// implementation of the query rules: it runs query.Apply directly over its
// records. The collection is fixed at construction; only statuses change.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mesh-intelligence/caseseam/internal/query"
	"github.com/mesh-intelligence/caseseam/internal/seed"
	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// Compile-time interface check.
var _ types.CaseGateway = (*Store)(nil)

// record guards one case. Updates to different records never contend.
type record struct {
	mu sync.RWMutex
	c  types.Case
}

// Store holds cases in memory.
type Store struct {
	// mu is held shared by updates and exclusively by snapshot, so a
	// listing sees every record as of one instant.
	mu      sync.RWMutex
	records []*record
	byID    map[int64]*record
	now     func() time.Time
	initial []types.Case
}

// Option configures a Store.
type Option func(*Store)

// WithCases replaces the seeded dataset with cs. IDs are reassigned from 1
// in slice order.
func WithCases(cs []types.Case) Option {
	return func(s *Store) { s.initial = cs }
}

// WithClock overrides the clock used for LastUpdatedUTC.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store holding the default seed dataset unless WithCases is
// given.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.initial == nil {
		s.initial = seed.Default(s.now)
	}

	s.records = make([]*record, len(s.initial))
	s.byID = make(map[int64]*record, len(s.initial))
	for i, c := range s.initial {
		c.ID = int64(i + 1)
		c.LastUpdatedUTC = types.Timestamp(c.LastUpdatedUTC)
		r := &record{c: c}
		s.records[i] = r
		s.byID[c.ID] = r
	}
	s.initial = nil
	return s
}

// ListCases implements types.CaseGateway.
func (s *Store) ListCases(ctx context.Context, q types.ListQuery) (types.PagedResult, error) {
	if err := q.Validate(); err != nil {
		return types.PagedResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.PagedResult{}, err
	}
	return query.Apply(s.snapshot(), q), nil
}

// UpdateStatus implements types.CaseGateway.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status string) (types.Case, error) {
	st, err := types.ParseStatus(status)
	if err != nil {
		return types.Case{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.Case{}, err
	}

	r, ok := s.byID[id]
	if !ok {
		return types.Case{}, types.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.c.Status = st
	r.c.LastUpdatedUTC = types.NextTimestamp(r.c.LastUpdatedUTC, s.now())
	return r.c, nil
}

// snapshot copies every record while no update is in flight.
func (s *Store) snapshot() []types.Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Case, len(s.records))
	for i, r := range s.records {
		r.mu.RLock()
		out[i] = r.c
		r.mu.RUnlock()
	}
	return out
}
