package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/mesh-intelligence/caseseam/pkg/types"
)

// tableTime is how timestamps appear in table output.
const tableTime = "2006-01-02 15:04:05"

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writePage renders one page of cases as an aligned table with a paging
// footer.
func writePage(w io.Writer, backend string, res types.PagedResult) error {
	fmt.Fprintf(w, "backend: %s\n\n", backend)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPATIENT\tPROCEDURE\tSTATUS\tLAST UPDATED (UTC)")
	for _, c := range res.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", c.ID, c.PatientName, c.Procedure, c.Status, c.LastUpdatedUTC.UTC().Format(tableTime))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\npage %d of %d (%d cases)\n", res.Page, pageCount(res.Total, res.PageSize), res.Total)
	return err
}

// pageCount is the number of pages needed for total items; at least 1.
func pageCount(total, size int) int {
	if total == 0 || size <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

func writeCase(w io.Writer, c types.Case) error {
	_, err := fmt.Fprintf(w, "case %d (%s, %s) is now %s, updated %s UTC\n",
		c.ID, c.PatientName, c.Procedure, c.Status, c.LastUpdatedUTC.UTC().Format(time.DateTime))
	return err
}
