package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/caseseam/internal/api"
	"github.com/mesh-intelligence/caseseam/internal/config"
	"github.com/mesh-intelligence/caseseam/internal/memory"
	"github.com/mesh-intelligence/caseseam/internal/sqlstore"
	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// shutdownTimeout bounds how long serve waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the case HTTP API",
		Long: `Serve the case API that the remote backend talks to:

  GET  /cases?search=&page=&pageSize=
  PUT  /cases/{id}/status   {"status": "..."}
  GET  /healthz
  GET  /metrics

The API keeps its own store (server.store: sqlite, postgres, or memory),
seeded with demo cases on first start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.setup(cmd, map[string]string{
				config.KeyServerAddr:  "addr",
				config.KeyServerStore: "store",
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, closer, err := openServerStore(ctx, a.settings, a.logger)
			if err != nil {
				return sysErrorf("open %s store: %w", a.settings.Server.Store, err)
			}
			defer closer.Close()

			ln, err := net.Listen("tcp", a.settings.Server.Addr)
			if err != nil {
				return sysErrorf("listen: %w", err)
			}
			h := api.NewHandler(store,
				api.WithLogger(a.logger),
				api.WithCORSOrigins(a.settings.Server.CORSOrigins),
				api.WithRegistry(serverRegistry(a.settings.Server.Store)))
			if err := serve(ctx, ln, h, a.logger); err != nil {
				return sysErrorf("%w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("addr", ":5050", "listen address")
	cmd.Flags().String("store", config.StoreSQLite, "backing store: sqlite, postgres, or memory")
	return cmd
}

// openServerStore opens the store selected by server.store.
func openServerStore(ctx context.Context, s config.Settings, logger *slog.Logger) (types.CaseGateway, io.Closer, error) {
	switch s.Server.Store {
	case config.StoreMemory:
		return memory.New(), io.NopCloser(nil), nil
	case config.StorePostgres:
		st, err := sqlstore.OpenPostgres(ctx, s.Server.PostgresDSN, sqlstore.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	case config.StoreSQLite:
		st, err := sqlstore.OpenSQLite(ctx, s.Server.SQLitePath, sqlstore.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	default:
		return nil, nil, fmt.Errorf("%w (got %q)", config.ErrUnknownStore, s.Server.Store)
	}
}

// serverRegistry returns the metrics registry for serve, carrying a
// caseseam_build_info gauge labelled with the version and backing store.
func serverRegistry(store string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "caseseam_build_info",
		Help:        "Build and store of the running server. Always 1.",
		ConstLabels: prometheus.Labels{"version": Version, "store": store},
	}, func() float64 { return 1 }))
	return reg
}

// serve runs h on ln until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, ln net.Listener, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
