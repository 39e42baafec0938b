package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/config"
)

const defaultConnectBackoff = 500 * time.Millisecond

// ConnectDatabase opens a pool and pings it, retrying with exponential
// backoff while the database is not reachable yet.
func ConnectDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database dsn: %w", err)
	}

	base := cfg.ConnectBackoff
	if base <= 0 {
		base = defaultConnectBackoff
	}
	backoff := retry.WithMaxRetries(cfg.ConnectRetries, retry.NewExponential(base))

	var pool *pgxpool.Pool
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		p, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			// A bad config will not fix itself.
			return fmt.Errorf("create pool: %w", err)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			logger.Warn("Database not ready",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return retry.RetryableError(fmt.Errorf("ping database: %w", err))
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("✅ Connected to database", zap.Int("attempts", attempt))
	return pool, nil
}
