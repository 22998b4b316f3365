// Package gateway selects the case store behind the seam. The choice is
// made once, from configuration, when the gateway is opened; callers see
// only types.CaseGateway.
package gateway

import (
	"context"
	"fmt"
	"io"

	"github.com/mesh-intelligence/caseseam/internal/remote"
	"github.com/mesh-intelligence/caseseam/internal/sqlstore"
	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// Compile-time interface check.
var _ types.CaseGateway = (*Gateway)(nil)

// Gateway delegates to the store chosen at Open.
type Gateway struct {
	store   types.CaseGateway
	backend string
}

// Open validates cfg and opens the store it selects: the local SQLite
// file for types.BackendLocal, the HTTP API for types.BackendRemote.
func Open(ctx context.Context, cfg types.Config) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		store types.CaseGateway
		err   error
	)
	switch cfg.Backend {
	case types.BackendLocal:
		store, err = sqlstore.OpenSQLite(ctx, cfg.SQLitePath)
	case types.BackendRemote:
		store, err = remote.New(cfg.RemoteURL, remote.WithTimeout(cfg.RemoteTimeout))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	return &Gateway{store: store, backend: cfg.Backend}, nil
}

// Backend names the active backend. It is informational; behaviour does
// not depend on it.
func (g *Gateway) Backend() string { return g.backend }

// ListCases implements types.CaseGateway.
func (g *Gateway) ListCases(ctx context.Context, q types.ListQuery) (types.PagedResult, error) {
	return g.store.ListCases(ctx, q)
}

// UpdateStatus implements types.CaseGateway.
func (g *Gateway) UpdateStatus(ctx context.Context, id int64, status string) (types.Case, error) {
	return g.store.UpdateStatus(ctx, id, status)
}

// Close releases the store's resources.
func (g *Gateway) Close() error {
	if c, ok := g.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
