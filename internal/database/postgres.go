package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"pipi/internal/config"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

var sleep = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// NewPostgresPool connects and pings, retrying a few times so the relay can
// start alongside its database.
func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres dsn is empty")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxOpen > 0 {
		poolConfig.MaxConns = int32(cfg.MaxOpen)
	}
	poolConfig.MinConns = int32(cfg.MaxIdle)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.HealthCheckPeriod = 30 * time.Second

	return retryConnect(ctx, log, poolConfig.ConnConfig.Host, func() (*pgxpool.Pool, error) {
		return connect(ctx, poolConfig)
	})
}

func retryConnect(ctx context.Context, log zerolog.Logger, host string, dial func() (*pgxpool.Pool, error)) (*pgxpool.Pool, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pool, err := dial()
		if err == nil {
			return pool, nil
		}
		lastErr = err

		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Str("host", host).
			Msg("postgres not ready")

		if attempt == connectAttempts {
			break
		}
		if err := sleep(ctx, time.Duration(attempt)*connectBackoff); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func connect(ctx context.Context, poolConfig *pgxpool.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}
