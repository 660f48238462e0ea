// Package postgrestest starts a throwaway PostgreSQL with the service schema applied.
package postgrestest

import (
	"context"
	"fmt"

	"github.com/corray333/foodorder/internal/dal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const image = "postgres:17-alpine"

// StartPostgres runs a container, connects a pool to it and applies migrations.
// The caller closes the pool and terminates the container.
func StartPostgres(ctx context.Context) (testcontainers.Container, *pgxpool.Pool, error) {
	container, err := tcpostgres.Run(ctx, image,
		tcpostgres.WithDatabase("orders"),
		tcpostgres.WithUsername("orders"),
		tcpostgres.WithPassword("orders"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return container, nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := postgres.Migrate(pool); err != nil {
		pool.Close()

		return container, nil, err
	}

	return container, pool, nil
}
