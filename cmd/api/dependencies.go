package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasir-scan/internal/catalog"
	"github.com/noah-isme/kasir-scan/internal/config"
	"github.com/noah-isme/kasir-scan/internal/health"
	"github.com/noah-isme/kasir-scan/internal/obs"
)

type dependencies struct {
	Catalog catalog.Catalog
	Redis   *redis.Client
	pool    *pgxpool.Pool
	logger  zerolog.Logger
}

// openDependencies connects the configured catalog backend and the optional
// Redis cache.
func openDependencies(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*dependencies, error) {
	d := &dependencies{logger: logger}
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	switch cfg.CatalogSource {
	case config.CatalogFile:
		static, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", cfg.CatalogFile).Int("products", static.Len()).Msg("catalog loaded from file")
		d.Catalog = static
	case config.CatalogPostgres:
		if cfg.DatabaseMigrate {
			if err := catalog.Migrate(cfg.DatabaseURL); err != nil {
				return nil, err
			}
		}
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse database config: %w", err)
		}
		poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
		poolConfig.ConnConfig.RuntimeParams["application_name"] = "kasir-scan"
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := pool.Ping(connectCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		d.pool = pool
		d.Catalog = catalog.Postgres{DB: pool}
	default:
		d.Catalog = catalog.Default()
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := redisotel.InstrumentTracing(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
		if cfg.MetricsEnabled {
			if err := redisotel.InstrumentMetrics(client); err != nil {
				logger.Error().Err(err).Msg("instrument redis metrics")
			}
		}
		if err := client.Ping(connectCtx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable at startup")
		}
		d.Redis = client
		if cfg.CatalogSource == config.CatalogPostgres {
			d.Catalog = catalog.Cached{Next: d.Catalog, Cache: catalog.NewCache(client, cfg.CatalogCacheTTL), Logger: &d.logger}
		}
	}
	return d, nil
}

// Probes returns readiness checks for every configured dependency.
func (d *dependencies) Probes() map[string]health.Probe {
	return map[string]health.Probe{
		"database": func(ctx context.Context) error {
			if d.pool == nil {
				return health.ErrDisabled
			}
			return d.pool.Ping(ctx)
		},
		"redis": func(ctx context.Context) error {
			if d.Redis == nil {
				return health.ErrDisabled
			}
			return d.Redis.Ping(ctx).Err()
		},
	}
}

func (d *dependencies) Close() {
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			d.logger.Error().Err(err).Msg("close redis")
		}
	}
	if d.pool != nil {
		d.pool.Close()
	}
}
