package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/flightinventory/config"
	"github.com/Domenick1991/flightinventory/internal/repository"
	"github.com/Domenick1991/flightinventory/internal/repository/memstore"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OpenStore connects the configured backend. The returned func releases it.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*repository.Store, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return memstore.New().Repositories(), func() {}, nil
	case config.DriverPostgres:
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	if cfg.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("schema applied")
	}
	return repository.NewPGStore(pool), pool.Close, nil
}
