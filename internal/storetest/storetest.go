// Package storetest is the contract suite every types.CaseGateway
// implementation must pass. Store packages call Run from their own tests
// with a factory that builds a fresh store over the given cases.
package storetest

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/caseseam/internal/memory"
	"github.com/mesh-intelligence/caseseam/internal/seed"
	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// Factory builds a fresh store holding cases, with IDs assigned from 1 in
// slice order, that reads the time from now. The factory registers its own
// cleanup on t.
type Factory func(t *testing.T, cases []types.Case, now func() time.Time) types.CaseGateway

// Epoch is the reference time for fixture data.
var Epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Clock is a goroutine-safe fake clock that advances one second per read.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock starting at start.
func NewClock(start time.Time) *Clock { return &Clock{now: start} }

// Now returns the current fake time and advances it.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// AnnBob returns the three-case fixture: two "Ann" cases and one "Bob".
// Ann B. is the most recently updated.
func AnnBob() []types.Case {
	return []types.Case{
		{PatientName: "Ann A.", Procedure: "CT", Status: types.StatusNew, LastUpdatedUTC: Epoch.Add(-3 * time.Hour)},
		{PatientName: "Ann B.", Procedure: "MRI", Status: types.StatusDone, LastUpdatedUTC: Epoch.Add(-1 * time.Hour)},
		{PatientName: "Bob C.", Procedure: "X-Ray", Status: types.StatusNew, LastUpdatedUTC: Epoch.Add(-2 * time.Hour)},
	}
}

// Seeded returns the default seed dataset anchored at Epoch.
func Seeded() []types.Case {
	return seed.Default(func() time.Time { return Epoch })
}

// Run executes the contract suite against stores built by open.
func Run(t *testing.T, open Factory) {
	t.Run("search and paging", func(t *testing.T) { testSearchAndPaging(t, open) })
	t.Run("validation", func(t *testing.T) { testValidation(t, open) })
	t.Run("update status", func(t *testing.T) { testUpdateStatus(t, open) })
	t.Run("parity with reference", func(t *testing.T) { testParity(t, open) })
	t.Run("concurrent access", func(t *testing.T) { testConcurrent(t, open) })
	t.Run("listing under concurrent updates", func(t *testing.T) { testConsistentListing(t, open) })
}

func list(t *testing.T, s types.CaseGateway, search string, page, size int) types.PagedResult {
	t.Helper()
	res, err := s.ListCases(context.Background(), types.ListQuery{Search: search, Page: page, PageSize: size})
	require.NoError(t, err)
	return res
}

func findCase(t *testing.T, s types.CaseGateway, id int64) types.Case {
	t.Helper()
	res := list(t, s, "", 1, types.MaxPageSize)
	for _, c := range res.Items {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("case %d not listed", id)
	return types.Case{}
}

func testSearchAndPaging(t *testing.T, open Factory) {
	t.Run("Ann search pages to most recent Ann", func(t *testing.T) {
		s := open(t, AnnBob(), NewClock(Epoch).Now)
		res := list(t, s, "Ann", 1, 1)
		assert.Equal(t, 2, res.Total)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, 1, res.PageSize)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "Ann B.", res.Items[0].PatientName)
		assert.Equal(t, int64(2), res.Items[0].ID)

		res = list(t, s, "Ann", 2, 1)
		assert.Equal(t, 2, res.Total)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "Ann A.", res.Items[0].PatientName)
	})

	t.Run("search is case insensitive across fields", func(t *testing.T) {
		s := open(t, AnnBob(), NewClock(Epoch).Now)
		tests := []struct {
			search string
			total  int
		}{
			{"ann", 2},
			{"  BOB  ", 1},
			{"mri", 1},
			{"x-RAY", 1},
			{"new", 2},
			{"DONE", 1},
			{"nobody", 0},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.total, list(t, s, tt.search, 1, 10).Total, "search %q", tt.search)
		}
	})

	t.Run("blank search equals unfiltered total", func(t *testing.T) {
		s := open(t, Seeded(), NewClock(Epoch).Now)
		all := list(t, s, "", 1, 10)
		assert.Equal(t, seed.DefaultCount, all.Total)
		assert.Equal(t, all.Total, list(t, s, "   ", 1, 10).Total)
		assert.Equal(t, all.Total, list(t, s, "\t\n", 2, 7).Total)
	})

	t.Run("page length and total invariants", func(t *testing.T) {
		s := open(t, Seeded(), NewClock(Epoch).Now)
		for _, search := range []string{"", "a", "CT", "new"} {
			first := list(t, s, search, 1, 1).Total
			for _, size := range []int{1, 4, 10, 30, 100} {
				for page := 1; page <= 8; page++ {
					res := list(t, s, search, page, size)
					want := min(size, max(0, res.Total-(page-1)*size))
					assert.Equal(t, first, res.Total, "search=%q page=%d size=%d", search, page, size)
					assert.Len(t, res.Items, want, "search=%q page=%d size=%d", search, page, size)
				}
			}
		}
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		s := open(t, AnnBob(), NewClock(Epoch).Now)
		res := list(t, s, "", 5, 10)
		assert.Equal(t, 3, res.Total)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
		assert.Equal(t, 5, res.Page)
	})

	t.Run("page near the int limit is empty", func(t *testing.T) {
		s := open(t, Seeded(), NewClock(Epoch).Now)
		tests := []struct {
			name     string
			page     int
			pageSize int
		}{
			{"offset overflows", math.MaxInt / 50, 100},
			{"largest page", math.MaxInt, types.MaxPageSize},
			{"offset just fits", math.MaxInt, 1},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res := list(t, s, "", tt.page, tt.pageSize)
				assert.Equal(t, seed.DefaultCount, res.Total)
				assert.NotNil(t, res.Items)
				assert.Empty(t, res.Items)
				assert.Equal(t, tt.page, res.Page)
				assert.Equal(t, tt.pageSize, res.PageSize)
			})
		}
	})

	t.Run("ordered most recent first with id tie break", func(t *testing.T) {
		cases := []types.Case{
			{PatientName: "Tie A.", Procedure: "EKG", Status: types.StatusNew, LastUpdatedUTC: Epoch},
			{PatientName: "Old B.", Procedure: "EKG", Status: types.StatusNew, LastUpdatedUTC: Epoch.Add(-time.Hour)},
			{PatientName: "Tie C.", Procedure: "EKG", Status: types.StatusNew, LastUpdatedUTC: Epoch},
			{PatientName: "New D.", Procedure: "EKG", Status: types.StatusNew, LastUpdatedUTC: Epoch.Add(time.Hour)},
		}
		s := open(t, cases, NewClock(Epoch).Now)
		res := list(t, s, "", 1, 10)
		require.Len(t, res.Items, 4)
		assert.Equal(t, []int64{4, 1, 3, 2}, ids(res.Items))

		again := list(t, s, "", 1, 10)
		assert.Equal(t, ids(res.Items), ids(again.Items))
	})

	t.Run("unicode search folds case", func(t *testing.T) {
		cases := []types.Case{
			{PatientName: "ÉLODIE K.", Procedure: "Biopsy", Status: types.StatusOnHold, LastUpdatedUTC: Epoch},
			{PatientName: "Elodie L.", Procedure: "Biopsy", Status: types.StatusOnHold, LastUpdatedUTC: Epoch},
		}
		s := open(t, cases, NewClock(Epoch).Now)
		res := list(t, s, "élodie", 1, 10)
		require.Equal(t, 1, res.Total)
		assert.Equal(t, "ÉLODIE K.", res.Items[0].PatientName)
	})

	t.Run("like wildcards are literal", func(t *testing.T) {
		cases := []types.Case{
			{PatientName: "Percent 100%", Procedure: "CT", Status: types.StatusNew, LastUpdatedUTC: Epoch},
			{PatientName: "Under_score", Procedure: "CT", Status: types.StatusNew, LastUpdatedUTC: Epoch},
			{PatientName: "Plain", Procedure: "CT", Status: types.StatusNew, LastUpdatedUTC: Epoch},
		}
		s := open(t, cases, NewClock(Epoch).Now)
		assert.Equal(t, 1, list(t, s, "%", 1, 10).Total)
		assert.Equal(t, 1, list(t, s, "_", 1, 10).Total)
	})
}

func testValidation(t *testing.T, open Factory) {
	s := open(t, AnnBob(), NewClock(Epoch).Now)
	ctx := context.Background()

	tests := []struct {
		name    string
		query   types.ListQuery
		wantErr error
	}{
		{"page zero", types.ListQuery{Page: 0, PageSize: 10}, types.ErrInvalidPage},
		{"negative page", types.ListQuery{Page: -3, PageSize: 10}, types.ErrInvalidPage},
		{"page size zero", types.ListQuery{Page: 1, PageSize: 0}, types.ErrInvalidPageSize},
		{"page size over max", types.ListQuery{Page: 1, PageSize: 101}, types.ErrInvalidPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ListCases(ctx, tt.query)
			require.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func testUpdateStatus(t *testing.T, open Factory) {
	ctx := context.Background()

	t.Run("canonicalizes and moves case to front", func(t *testing.T) {
		s := open(t, AnnBob(), NewClock(Epoch).Now)
		before := findCase(t, s, 1)
		require.Equal(t, types.StatusNew, before.Status)

		got, err := s.UpdateStatus(ctx, 1, "done")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.Equal(t, types.StatusDone, got.Status)
		assert.Equal(t, "Ann A.", got.PatientName)
		assert.True(t, got.LastUpdatedUTC.After(before.LastUpdatedUTC))

		res := list(t, s, "", 1, 10)
		require.NotEmpty(t, res.Items)
		assert.Equal(t, int64(1), res.Items[0].ID)
		assert.Equal(t, types.StatusDone, res.Items[0].Status)
		assert.True(t, res.Items[0].LastUpdatedUTC.Equal(got.LastUpdatedUTC))
	})

	t.Run("accepts case and whitespace variants", func(t *testing.T) {
		s := open(t, AnnBob(), NewClock(Epoch).Now)
		for input, want := range map[string]types.Status{
			"  inprogress ": types.StatusInProgress,
			"ONHOLD":        types.StatusOnHold,
			"cancelled":     types.StatusCancelled,
			"New":           types.StatusNew,
		} {
			got, err := s.UpdateStatus(ctx, 3, input)
			require.NoError(t, err, input)
			assert.Equal(t, want, got.Status)
			assert.Equal(t, want, findCase(t, s, 3).Status)
		}
	})

	t.Run("same status is allowed and still touches timestamp", func(t *testing.T) {
		s := open(t, AnnBob(), NewClock(Epoch).Now)
		before := findCase(t, s, 2)
		got, err := s.UpdateStatus(ctx, 2, "Done")
		require.NoError(t, err)
		assert.Equal(t, types.StatusDone, got.Status)
		assert.True(t, got.LastUpdatedUTC.After(before.LastUpdatedUTC))
	})

	t.Run("timestamp never goes backwards", func(t *testing.T) {
		future := AnnBob()
		future[0].LastUpdatedUTC = Epoch.Add(48 * time.Hour)
		s := open(t, future, NewClock(Epoch).Now)
		got, err := s.UpdateStatus(ctx, 1, "OnHold")
		require.NoError(t, err)
		assert.True(t, got.LastUpdatedUTC.After(future[0].LastUpdatedUTC))
	})

	t.Run("invalid status leaves record unchanged", func(t *testing.T) {
		s := open(t, AnnBob(), NewClock(Epoch).Now)
		before := findCase(t, s, 1)

		for input, wantErr := range map[string]error{
			"Archived": types.ErrInvalidStatus,
			"":         types.ErrStatusRequired,
			"   ":      types.ErrStatusRequired,
		} {
			_, err := s.UpdateStatus(ctx, 1, input)
			require.ErrorIs(t, err, wantErr, "input %q", input)
			assert.ErrorIs(t, err, types.ErrValidation)
		}

		after := findCase(t, s, 1)
		assert.Equal(t, before.Status, after.Status)
		assert.True(t, before.LastUpdatedUTC.Equal(after.LastUpdatedUTC))
	})

	t.Run("unknown id is not found and mutates nothing", func(t *testing.T) {
		s := open(t, AnnBob(), NewClock(Epoch).Now)
		before := list(t, s, "", 1, 10)

		_, err := s.UpdateStatus(ctx, 999, "Done")
		require.ErrorIs(t, err, types.ErrNotFound)
		assert.NotErrorIs(t, err, types.ErrValidation)

		after := list(t, s, "", 1, 10)
		RequireSameCases(t, before.Items, after.Items)
	})

	t.Run("validation wins over not found", func(t *testing.T) {
		s := open(t, AnnBob(), NewClock(Epoch).Now)
		_, err := s.UpdateStatus(ctx, 999, "Archived")
		require.ErrorIs(t, err, types.ErrInvalidStatus)
	})
}

func testParity(t *testing.T, open Factory) {
	fixture := Seeded()
	s := open(t, fixture, NewClock(Epoch).Now)
	ref := memory.New(memory.WithCases(fixture), memory.WithClock(NewClock(Epoch).Now))
	ctx := context.Background()

	queries := []types.ListQuery{
		{Page: 1, PageSize: 10},
		{Page: 2, PageSize: 10},
		{Page: 3, PageSize: 10},
		{Page: 4, PageSize: 10},
		{Page: 1, PageSize: 100},
		{Search: "a", Page: 1, PageSize: 5},
		{Search: "A.", Page: 1, PageSize: 100},
		{Search: "ultra", Page: 1, PageSize: 100},
		{Search: "progress", Page: 1, PageSize: 100},
		{Search: "HOLD", Page: 2, PageSize: 3},
	}

	check := func() {
		for _, q := range queries {
			want, err := ref.ListCases(ctx, q)
			require.NoError(t, err)
			got, err := s.ListCases(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, want.Total, got.Total, "query %+v", q)
			assert.Equal(t, want.Page, got.Page)
			assert.Equal(t, want.PageSize, got.PageSize)
			RequireSameCases(t, want.Items, got.Items)
		}
	}

	check()
	for _, id := range []int64{5, 17, 30} {
		want, err := ref.UpdateStatus(ctx, id, "cancelled")
		require.NoError(t, err)
		got, err := s.UpdateStatus(ctx, id, "cancelled")
		require.NoError(t, err)
		assert.Equal(t, want.Status, got.Status)
		assert.True(t, want.LastUpdatedUTC.Equal(got.LastUpdatedUTC), "id %d", id)
	}
	check()
}

func testConcurrent(t *testing.T, open Factory) {
	s := open(t, Seeded(), NewClock(Epoch).Now)
	ctx := context.Background()
	statuses := types.ValidStatuses()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 5 {
				id := int64(w%4 + 1)
				if _, err := s.UpdateStatus(ctx, id, string(statuses[(w+i)%len(statuses)])); err != nil {
					errs <- fmt.Errorf("update %d: %w", id, err)
					return
				}
				if _, err := s.ListCases(ctx, types.ListQuery{Search: "a", Page: 1, PageSize: 10}); err != nil {
					errs <- fmt.Errorf("list: %w", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	res := list(t, s, "", 1, types.MaxPageSize)
	assert.Equal(t, seed.DefaultCount, res.Total)
	for _, c := range res.Items {
		_, err := types.ParseStatus(string(c.Status))
		assert.NoError(t, err)
	}
	// The four touched cases are now the four most recent.
	touched := map[int64]bool{}
	for _, c := range res.Items[:4] {
		touched[c.ID] = true
	}
	assert.Equal(t, map[int64]bool{1: true, 2: true, 3: true, 4: true}, touched)
}

// testConsistentListing flips statuses while readers list one status; every
// page must agree with its own total.
func testConsistentListing(t *testing.T, open Factory) {
	const n = 20
	cases := make([]types.Case, n)
	for i := range cases {
		cases[i] = types.Case{
			PatientName:    fmt.Sprintf("Case %d.", i+1),
			Procedure:      "CT",
			Status:         types.StatusNew,
			LastUpdatedUTC: Epoch.Add(-time.Duration(i+1) * time.Minute),
		}
	}
	s := open(t, cases, NewClock(Epoch).Now)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 10 {
				id := int64(w*5 + i%5 + 1)
				status := types.StatusOnHold
				if i%2 == 1 {
					status = types.StatusNew
				}
				if _, err := s.UpdateStatus(ctx, id, string(status)); err != nil {
					errs <- fmt.Errorf("update %d: %w", id, err)
					return
				}
			}
		}()
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				res, err := s.ListCases(ctx, types.ListQuery{Search: "onhold", Page: 1, PageSize: types.MaxPageSize})
				if err != nil {
					errs <- fmt.Errorf("list: %w", err)
					return
				}
				if len(res.Items) != res.Total {
					errs <- fmt.Errorf("total %d but %d items", res.Total, len(res.Items))
					return
				}
				for _, c := range res.Items {
					if c.Status != types.StatusOnHold {
						errs <- fmt.Errorf("case %d listed with status %s", c.ID, c.Status)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// RequireSameCases asserts want and got hold the same cases in the same
// order, comparing timestamps as instants.
func RequireSameCases(t *testing.T, want, got []types.Case) {
	t.Helper()
	require.Equal(t, ids(want), ids(got))
	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.PatientName, g.PatientName, "case %d", w.ID)
		assert.Equal(t, w.Procedure, g.Procedure, "case %d", w.ID)
		assert.Equal(t, w.Status, g.Status, "case %d", w.ID)
		assert.True(t, w.LastUpdatedUTC.Equal(g.LastUpdatedUTC), "case %d: %s != %s", w.ID, w.LastUpdatedUTC, g.LastUpdatedUTC)
	}
}

func ids(cs []types.Case) []int64 {
	out := make([]int64, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}
