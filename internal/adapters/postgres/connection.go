// Package postgres is a thin pgx connection wrapper, grounded on the
// teacher's common/mpostgres but trimmed to a single pool: the ledger
// has no read-replica split and schema migrations are applied out of
// band, so dbresolver and golang-migrate are not wired here.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connection holds a singleton pgx pool.
type Connection struct {
	ConnectionString string
	pool             *pgxpool.Pool
}

// Connect opens the pool and verifies connectivity with a ping.
func (c *Connection) Connect(ctx context.Context) error {
	cfg, err := pgxpool.ParseConfig(c.ConnectionString)
	if err != nil {
		return fmt.Errorf("postgres: parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("postgres: open pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("postgres: ping: %w", err)
	}

	c.pool = pool

	return nil
}

// Pool returns the underlying pgx pool, connecting lazily if necessary.
func (c *Connection) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.pool == nil {
		if err := c.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return c.pool, nil
}

// Close releases the pool.
func (c *Connection) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}
