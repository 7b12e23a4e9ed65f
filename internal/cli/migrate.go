package cli

import (
	"github.com/spf13/cobra"

	"github.com/paveldruzyak/commodus/internal/config"
)

func newMigrateCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the postgres store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load(opts)
			if err != nil {
				return err
			}
			if cfg.Store.Driver != config.DriverPostgres {
				logger.Info().Str("store", cfg.Store.Driver).Msg("store has no schema, nothing to migrate")
				return nil
			}
			_, closeStore, err := openStore(cmd.Context(), cfg.Store, true, logger)
			if err != nil {
				return err
			}
			closeStore()
			return nil
		},
	}
}
