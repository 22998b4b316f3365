package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/caseseam/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  "Print the settings after config.yaml, CASESEAM_* environment variables, and defaults are applied.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, nil); err != nil {
				return err
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), a.settings)
			}
			body, err := config.Marshal(a.settings)
			if err != nil {
				return sysErrorf("render config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", a.loader.Path(), body)
			return nil
		},
	}
}
