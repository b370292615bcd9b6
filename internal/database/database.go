package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SHUBHAMREWA/kanvei.in/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	connectAttempts = 3
	connectBackoff  = 1 * time.Second
)

// NewPool creates a new PostgreSQL connection pool. Initial connectivity is
// verified with a bounded retry loop (fixed backoff, initial connection only;
// individual queries are never retried).
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_connections", cfg.MaxConnections).
		Int("min_connections", cfg.MinConnections).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			break
		}

		logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", connectAttempts).
			Msg("database ping failed")

		if attempt == connectAttempts {
			pool.Close()
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectAttempts, err)
		}

		select {
		case <-time.After(connectBackoff):
		case <-ctx.Done():
			pool.Close()
			return nil, fmt.Errorf("database connection cancelled: %w", ctx.Err())
		}
	}

	logger.Info().Msg("database connection pool created successfully")

	return pool, nil
}
