// Package cli implements the caseseam command-line interface. The list
// and update-status commands talk to the case seam and never know which
// backend configuration selected; serve runs the HTTP API that the remote
// backend calls.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/caseseam/internal/config"
	"github.com/mesh-intelligence/caseseam/internal/paths"
	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app is the state shared by the subcommands of one root command.
type app struct {
	flags    rootFlags
	loader   *config.Loader
	settings config.Settings
	logger   *slog.Logger
}

// NewRootCmd creates the top-level "caseseam" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "caseseam",
		Short: "Browse and update cases through a swappable storage seam",
		Long: "caseseam lists and updates patient procedure cases. Whether cases live in a\n" +
			"local SQLite file or behind the caseseam HTTP API is decided by configuration\n" +
			"(migration.use_remote); every command behaves the same either way.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $"+paths.EnvConfigDir+")")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir, or $"+paths.EnvDataDir+")")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newUpdateStatusCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newConfigCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// setup resolves directories, loads configuration with the given flag
// bindings (config key to flag name), and installs the logger.
func (a *app) setup(cmd *cobra.Command, binds map[string]string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysErrorf("resolve config dir: %w", err)
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir)
	if err != nil {
		return sysErrorf("resolve data dir: %w", err)
	}

	a.loader, err = config.Load(configDir, dataDir)
	if err != nil {
		return sysErrorf("load config: %w", err)
	}
	for key, name := range binds {
		if err := a.loader.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return sysErrorf("%w", err)
		}
	}
	a.settings, err = a.loader.Settings()
	if err != nil {
		return err
	}

	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.settings.LogLevel()}))
	slog.SetDefault(a.logger)
	return nil
}

// sysError marks a failure of the environment rather than of the input.
type sysError struct{ err error }

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

func sysErrorf(format string, args ...any) error {
	return &sysError{err: fmt.Errorf(format, args...)}
}

// storeError passes caller mistakes through and marks everything else a
// system failure.
func storeError(err error) error {
	if errors.Is(err, types.ErrValidation) || errors.Is(err, types.ErrNotFound) {
		return err
	}
	return &sysError{err: err}
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *sysError
	if errors.As(err, &se) || errors.Is(err, types.ErrTransport) {
		return exitSysError
	}
	return exitUserError
}
