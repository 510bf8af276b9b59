package container

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/migrations"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

// RedisConn owns the Redis client shared by the cache, broker and rate limiter.
type RedisConn struct {
	Client *redis.Client
}

func (c *RedisConn) Shutdown() error {
	return c.Client.Close()
}

// PostgresConn owns the connection pool shared by the entry and click stores.
type PostgresConn struct {
	Pool *pgxpool.Pool
}

func (c *PostgresConn) Shutdown() error {
	c.Pool.Close()

	return nil
}

func connectPostgres(opts *Options, logger *zap.Logger) (*PostgresConn, error) {
	if opts.Migrate {
		if err := migrate(opts.DatabaseURL, logger); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	logger.Info("connected to postgres")

	return &PostgresConn{Pool: pool}, nil
}

func migrate(databaseURL string, logger *zap.Logger) (err error) {
	m, err := migrations.New(databaseURL, logger)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close migrator: %w", closeErr)
		}
	}()

	return m.Up()
}
