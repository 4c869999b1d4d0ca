package commands

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dvloznov/statement-recon/internal/pipeline"
)

func newParseCommand(root *rootOptions) *cobra.Command {
	var (
		sourceURI string
		batchID   string
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse one statement PDF and store its parsing result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sourceURI == "" {
				return errors.New("--uri is required")
			}
			if batchID == "" {
				batchID = uuid.New().String()
			}

			ctx, a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			state, err := pipeline.ParseStatement(ctx, sourceURI, batchID, a.ParserDeps())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s (batch %s)\n", state.ResultName, state.BatchID)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceURI, "uri", "", "gs:// URI or object name of the statement PDF")
	cmd.Flags().StringVar(&batchID, "batch-id", "", "batch id (default random)")
	return cmd
}
