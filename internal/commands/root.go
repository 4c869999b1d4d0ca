// Package commands implements the recon command line.
package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/statement-recon/internal/app"
	"github.com/dvloznov/statement-recon/internal/config"
	"github.com/dvloznov/statement-recon/internal/logger"
)

// AppFactory builds the collaborators for a command.
type AppFactory func(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app.App, error)

type rootOptions struct {
	configPath string
	logLevel   string
	newApp     AppFactory
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(app.New)
}

// NewRootCommandWith is NewRootCommand with an injectable AppFactory.
func NewRootCommandWith(factory AppFactory) *cobra.Command {
	opts := &rootOptions{newApp: factory}

	rootCmd := &cobra.Command{
		Use:   "recon",
		Short: "Bank statement reconciliation",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to recon.yaml (optional)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(
		newListCommand(opts),
		newExportCommand(opts),
		newParseCommand(opts),
		newUploadCommand(opts),
		newConfigCommand(),
	)

	return rootCmd
}

// open loads configuration and builds the App for cmd. Logs go to stderr
// so stdout carries only command output.
func (o *rootOptions) open(cmd *cobra.Command) (context.Context, *app.App, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	log := logger.NewConsole(cmd.ErrOrStderr(), cfg.Log.Level)
	ctx := logger.WithContext(cmd.Context(), log)

	a, err := o.newApp(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing: %w", err)
	}
	return ctx, a, nil
}
