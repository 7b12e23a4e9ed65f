package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/paveldruzyak/commodus/internal/config"
	"github.com/paveldruzyak/commodus/internal/domain/approval"
	"github.com/paveldruzyak/commodus/internal/infrastructure/bolt"
	"github.com/paveldruzyak/commodus/internal/infrastructure/postgres"
)

// openStore opens the configured approval store. Postgres schemas are
// migrated when migrate is set.
func openStore(ctx context.Context, cfg config.StoreConfig, migrate bool, logger zerolog.Logger) (approval.Repository, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres.ConnString(), postgres.PoolConfig{
			MaxConns: cfg.Postgres.MaxConns,
			MinConns: cfg.Postgres.MinConns,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", approval.ErrStoreUnavailable, err)
		}
		if migrate {
			if err := postgres.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, err
			}
			logger.Info().Msg("postgres migrations applied")
		}
		return postgres.NewApprovalRepository(pool), pool.Close, nil
	case config.DriverBolt:
		repo, err := bolt.Open(cfg.BoltPath, 0)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
