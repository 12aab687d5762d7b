// Package redis is a thin go-redis connection wrapper, grounded on the
// teacher's common/mredis.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lerianstudio/eventledger/internal/platform/log"
)

// Connection holds a singleton redis client.
type Connection struct {
	ConnectionString string
	Logger           log.Logger
	client           *redis.Client
}

// Connect opens the client and verifies connectivity with a ping.
func (c *Connection) Connect(ctx context.Context) error {
	opts, err := redis.ParseURL(c.ConnectionString)
	if err != nil {
		return fmt.Errorf("redis: parse connection string: %w", err)
	}

	client := redis.NewClient(opts)

	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}

	if c.Logger != nil {
		c.Logger.Info("connected to redis")
	}

	c.client = client

	return nil
}

// Client returns the underlying redis client, connecting lazily.
func (c *Connection) Client(ctx context.Context) (*redis.Client, error) {
	if c.client == nil {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.client, nil
}

// Close releases the client.
func (c *Connection) Close() error {
	if c.client != nil {
		return c.client.Close()
	}

	return nil
}
