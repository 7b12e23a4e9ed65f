// Package cli defines the commodus command-line interface.
package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/paveldruzyak/commodus/internal/config"
	"github.com/paveldruzyak/commodus/internal/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
}

// Execute builds the root command and runs it with args.
func Execute(ctx context.Context, args []string) error {
	opts := &Options{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "commodus",
		Short:         "commodus gates pull requests on plus-one code review comments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a config file (yaml, toml or json)")

	cmd.AddCommand(
		newServeCommand(opts),
		newMigrateCommand(opts),
		newRecordsCommand(opts),
	)
	return cmd
}

// load reads configuration and builds the logger every command uses.
func load(opts *Options) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Pretty), nil
}
