package main

import (
	"context"
	"fmt"
	"os"

	"paperbuilder/internal/app"
	"paperbuilder/internal/config"
	"paperbuilder/internal/logging"

	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every subcommand
type options struct {
	configPath string
	paperFile  string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "paperctl",
		Short: "Work with the autosaved question paper from the command line",
		Long: `paperctl reads and writes the same paper the server edits, using the
configured storage backend.

Available subcommands:
  export   - Write the paper to paper.json
  import   - Replace the paper with an exported file
  search   - Print the sections and groups matching a query
  validate - Check the paper (or a file) for structural problems
  seed     - Create a sample paper`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.paperFile, "file", "", "use the file backend at this path")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newExportCmd(opts),
		newImportCmd(opts),
		newSearchCmd(opts),
		newValidateCmd(opts),
		newSeedCmd(opts),
	)
	return rootCmd
}

// open loads the configuration and wires the editor against its storage
func (o *options) open(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.paperFile != "" {
		cfg.Storage.Backend = config.StorageFile
		cfg.Storage.File = o.paperFile
	}
	// Pending confirmations belong to the server; the CLI never needs Redis for them.
	cfg.Confirm.Store = "memory"

	logger, err := logging.New(o.logLevel, "console")
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return app.New(ctx, cfg, logger)
}
