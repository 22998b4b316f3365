package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/caseseam/internal/gateway"
	"github.com/mesh-intelligence/caseseam/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	var q types.ListQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases, most recently updated first",
		Long: `List one page of cases. --search matches a case-insensitive substring of the
patient name, procedure, or status.

Example:
  caseseam list
  caseseam list --search ann --page 2
  caseseam list --search mri --page-size 25 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd, nil); err != nil {
				return err
			}
			g, err := gateway.Open(cmd.Context(), a.settings.Gateway())
			if err != nil {
				return storeError(err)
			}
			defer g.Close()

			res, err := g.ListCases(cmd.Context(), q)
			if err != nil {
				return storeError(err)
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writePage(cmd.OutOrStdout(), g.Backend(), res)
		},
	}
	cmd.Flags().StringVar(&q.Search, "search", "", "filter by patient name, procedure, or status")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&q.PageSize, "page-size", types.DefaultPageSize, "cases per page (1-100)")
	return cmd
}
