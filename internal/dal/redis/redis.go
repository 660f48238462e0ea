package redis

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

// Client represents a Redis client.
type Client struct {
	rdb *redis.Client
}

// Redis returns the underlying client.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// Close closes the connection for graceful shutdown.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// NewClientFromRedis wraps an existing client.
func NewClientFromRedis(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// MustNewClient creates a new Redis client.
func MustNewClient() *Client {
	addr := viper.GetString("redis.addr")
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       viper.GetInt("redis.db"),
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		panic(err)
	}

	slog.Info("Redis connected", "addr", addr)

	return &Client{rdb: rdb}
}
