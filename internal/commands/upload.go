package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dvloznov/statement-recon/internal/docstore"
)

func newUploadCommand(root *rootOptions) *cobra.Command {
	var (
		file string
		dest string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a statement PDF to the document store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}

			ctx, a, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			name := dest
			if name == "" {
				name = a.Config.UploadPath(filepath.Base(file))
			}
			if err := docstore.UploadFile(ctx, a.Store, name, file); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), docstore.URI(a.Config.Storage.Container, name))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "local PDF to upload")
	cmd.Flags().StringVar(&dest, "dest", "", "object name (default <base_dir>/raw/<file name>)")
	return cmd
}
