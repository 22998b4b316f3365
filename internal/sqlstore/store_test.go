package sqlstore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/caseseam/internal/seed"
	"github.com/mesh-intelligence/caseseam/internal/storetest"
	"github.com/mesh-intelligence/caseseam/pkg/types"
)

func openTemp(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "cases.db")
	s, err := OpenSQLite(context.Background(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T, cases []types.Case, now func() time.Time) types.CaseGateway {
		s, _ := openTemp(t, WithSeed(cases), WithClock(now))
		return s
	})
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()

	t.Run("empty path", func(t *testing.T) {
		_, err := OpenSQLite(ctx, "")
		assert.ErrorIs(t, err, types.ErrSQLitePathEmpty)
	})

	t.Run("fresh file is seeded with default dataset", func(t *testing.T) {
		s, _ := openTemp(t)
		assert.Equal(t, "sqlite", s.Dialect())
		res, err := s.ListCases(ctx, types.ListQuery{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, seed.DefaultCount, res.Total)
		assert.Len(t, res.Items, 10)
	})

	t.Run("reopen keeps rows and updates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cases.db")
		s, err := OpenSQLite(ctx, path, WithSeed(storetest.AnnBob()))
		require.NoError(t, err)
		updated, err := s.UpdateStatus(ctx, 3, "onhold")
		require.NoError(t, err)
		require.NoError(t, s.Close())

		s, err = OpenSQLite(ctx, path)
		require.NoError(t, err)
		defer s.Close()

		res, err := s.ListCases(ctx, types.ListQuery{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, res.Total)
		require.NotEmpty(t, res.Items)
		assert.Equal(t, int64(3), res.Items[0].ID)
		assert.Equal(t, types.StatusOnHold, res.Items[0].Status)
		assert.True(t, updated.LastUpdatedUTC.Equal(res.Items[0].LastUpdatedUTC))
	})

	t.Run("concurrent first opens seed once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cases.db")
		var wg sync.WaitGroup
		stores := make([]*Store, 4)
		errs := make([]error, 4)
		for i := range stores {
			wg.Add(1)
			go func() {
				defer wg.Done()
				stores[i], errs[i] = OpenSQLite(ctx, path)
			}()
		}
		wg.Wait()
		for i, s := range stores {
			require.NoError(t, errs[i])
			defer s.Close()
		}
		res, err := stores[0].ListCases(ctx, types.ListQuery{Page: 1, PageSize: 1})
		require.NoError(t, err)
		assert.Equal(t, seed.DefaultCount, res.Total)
	})

	t.Run("cancelled context fails", func(t *testing.T) {
		s, _ := openTemp(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.ListCases(cctx, types.ListQuery{Page: 1, PageSize: 10})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.FixedZone("X", 3600))
	text := formatTime(in)
	assert.Equal(t, "2026-01-02T02:04:05.123456Z", text)

	out, err := parseTime(text)
	require.NoError(t, err)
	assert.True(t, out.Equal(types.Timestamp(in)))
	assert.Equal(t, time.UTC, out.Location())

	_, err = parseTime("yesterday")
	assert.Error(t, err)
}
