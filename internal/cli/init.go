package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/caseseam/internal/sqlstore"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file and the local case database",
		Long: "Write a default config.yaml if none exists, then create and seed the local\n" +
			"SQLite database. Running init again changes nothing.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, nil); err != nil {
				return err
			}
			path := a.settings.Data.SQLitePath
			store, err := sqlstore.OpenSQLite(cmd.Context(), path, sqlstore.WithLogger(a.logger))
			if err != nil {
				return sysErrorf("initialize storage: %w", err)
			}
			if err := store.Close(); err != nil {
				return sysErrorf("close storage: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "caseseam initialized")
			fmt.Fprintf(out, "config: %s\n", a.loader.Path())
			fmt.Fprintf(out, "data:   %s\n", path)
			return nil
		},
	}
}
