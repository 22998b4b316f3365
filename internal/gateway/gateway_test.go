package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/caseseam/internal/api"
	"github.com/mesh-intelligence/caseseam/internal/memory"
	"github.com/mesh-intelligence/caseseam/internal/storetest"
	"github.com/mesh-intelligence/caseseam/pkg/types"
)

func TestOpenRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.Config
		wantErr error
	}{
		{"empty backend", types.Config{}, types.ErrBackendEmpty},
		{"unknown backend", types.Config{Backend: "cloud"}, types.ErrBackendUnknown},
		{"local without path", types.Config{Backend: types.BackendLocal}, types.ErrSQLitePathEmpty},
		{"remote without url", types.Config{Backend: types.BackendRemote}, types.ErrRemoteURLEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := Open(context.Background(), types.Config{Backend: types.BackendRemote, RemoteURL: "::bad"})
	assert.Error(t, err)
}

func TestOpenLocal(t *testing.T) {
	ctx := context.Background()
	g, err := Open(ctx, types.Config{
		Backend:    types.BackendLocal,
		SQLitePath: filepath.Join(t.TempDir(), "caseseam.db"),
	})
	require.NoError(t, err)
	defer g.Close()

	assert.Equal(t, types.BackendLocal, g.Backend())
	res, err := g.ListCases(ctx, types.ListQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 30, res.Total)
}

func TestOpenRemote(t *testing.T) {
	ctx := context.Background()
	backing := memory.New(memory.WithCases(storetest.AnnBob()))
	srv := httptest.NewServer(api.NewHandler(backing, api.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))))
	defer srv.Close()

	g, err := Open(ctx, types.Config{Backend: types.BackendRemote, RemoteURL: srv.URL + "/"})
	require.NoError(t, err)
	defer g.Close()

	assert.Equal(t, types.BackendRemote, g.Backend())
	res, err := g.ListCases(ctx, types.ListQuery{Search: "ann", Page: 1, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)

	c, err := g.UpdateStatus(ctx, 3, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, types.StatusCancelled, c.Status)

	_, err = g.UpdateStatus(ctx, 99, "New")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

// Both backends answer the same calls with the same results.
func TestBackendsAreInterchangeable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	apiStore, err := Open(ctx, types.Config{Backend: types.BackendLocal, SQLitePath: filepath.Join(dir, "api.db")})
	require.NoError(t, err)
	defer apiStore.Close()
	srv := httptest.NewServer(api.NewHandler(apiStore, api.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))))
	defer srv.Close()

	local, err := Open(ctx, types.Config{Backend: types.BackendLocal, SQLitePath: filepath.Join(dir, "local.db")})
	require.NoError(t, err)
	defer local.Close()
	rem, err := Open(ctx, types.Config{Backend: types.BackendRemote, RemoteURL: srv.URL})
	require.NoError(t, err)
	defer rem.Close()

	for _, g := range []*Gateway{local, rem} {
		res, err := g.ListCases(ctx, types.ListQuery{Search: "  ", Page: 2, PageSize: 7})
		require.NoError(t, err, g.Backend())
		assert.Equal(t, 30, res.Total, g.Backend())
		assert.Len(t, res.Items, 7, g.Backend())

		_, err = g.ListCases(ctx, types.ListQuery{Page: 1, PageSize: 0})
		assert.ErrorIs(t, err, types.ErrInvalidPageSize, g.Backend())

		_, err = g.UpdateStatus(ctx, 1000, "Done")
		assert.ErrorIs(t, err, types.ErrNotFound, g.Backend())

		c, err := g.UpdateStatus(ctx, 4, "ONHOLD")
		require.NoError(t, err, g.Backend())
		assert.Equal(t, types.StatusOnHold, c.Status)

		first, err := g.ListCases(ctx, types.ListQuery{Page: 1, PageSize: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(4), first.Items[0].ID, g.Backend())
	}
}
