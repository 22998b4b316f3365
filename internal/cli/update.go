package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/caseseam/internal/gateway"
	"github.com/mesh-intelligence/caseseam/pkg/types"
)

func newUpdateStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update-status <id> <status>",
		Short: "Set the status of a case",
		Long: "Set the status of a case and stamp it with the current time. Status is\n" +
			"case-insensitive; valid values: " + types.StatusNames() + ".",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: case id %q is not an integer", types.ErrInvalidRequest, args[0])
			}
			if err := a.setup(cmd, nil); err != nil {
				return err
			}
			g, err := gateway.Open(cmd.Context(), a.settings.Gateway())
			if err != nil {
				return storeError(err)
			}
			defer g.Close()

			c, err := g.UpdateStatus(cmd.Context(), id, args[1])
			if err != nil {
				return storeError(err)
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), c)
			}
			return writeCase(cmd.OutOrStdout(), c)
		},
	}
}
