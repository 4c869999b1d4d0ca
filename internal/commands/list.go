package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dvloznov/statement-recon/internal/app"
	"github.com/dvloznov/statement-recon/internal/enrichment"
	"github.com/dvloznov/statement-recon/internal/statements"
	"github.com/dvloznov/statement-recon/internal/view"
)

func newListCommand(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reconciliation rows for the current batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			views, batch, err := loadViews(ctx, a)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}
			if err := writeTable(out, views); err != nil {
				return err
			}
			if len(batch.Dropped) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d item(s) dropped\n", len(batch.Dropped))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as JSON")
	return cmd
}

// loadViews loads the batch and renders it with enrichment overlays.
func loadViews(ctx context.Context, a *app.App) ([]view.RowView, statements.Batch, error) {
	batch, err := a.Loader().Load(ctx)
	if err != nil {
		return nil, statements.Batch{}, fmt.Errorf("loading batch: %w", err)
	}
	records := enrichment.LookupOrEmpty(ctx, a.Enrichment, view.CaseIDs(batch.Rows))
	return view.BuildRows(batch.Rows, records), batch, nil
}

func writeTable(w io.Writer, views []view.RowView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE ID\tBANK\tPERIOD\tDOCUMENT\tACCOUNTS\tRECONCILED")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d/%d\n",
			v.CaseID, v.BankName, v.PeriodLabel, v.DocumentName,
			v.Summary.Accounts, v.Summary.Reconciled, v.Summary.Accounts)
	}
	return tw.Flush()
}
