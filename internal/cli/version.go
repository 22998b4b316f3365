package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const modulePath = "github.com/mesh-intelligence/caseseam"

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "0.0.0-dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the caseseam version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "caseseam v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
