package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool sized for the requested number of maintenance
// workers and verifies the server is reachable before returning it.
func Connect(ctx context.Context, config Config, workers int) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(config.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("invalid connection URL: %w", err)
	}

	// One session per worker plus one for catalog queries
	if int32(workers+1) > poolConfig.MaxConns {
		poolConfig.MaxConns = int32(workers + 1)
	}

	pgPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = Select1(pingCtx, pgPool)
	if err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("unable to ping PostgreSQL database: %w", err)
	}

	return pgPool, nil
}
