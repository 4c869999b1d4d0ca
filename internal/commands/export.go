package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvloznov/statement-recon/internal/report"
)

func newExportCommand(root *rootOptions) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the current batch as a spreadsheet or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != report.FormatXLSX && format != report.FormatPDF {
				return fmt.Errorf("--format must be %s or %s", report.FormatXLSX, report.FormatPDF)
			}
			if output == "" {
				output = "reconciliations." + format
			}

			ctx, a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			views, _, err := loadViews(ctx, a)
			if err != nil {
				return err
			}

			data, _, err := report.Build(format, views)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d row(s) to %s\n", len(views), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", report.FormatXLSX, "export format (xlsx or pdf)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default reconciliations.<format>)")
	return cmd
}
