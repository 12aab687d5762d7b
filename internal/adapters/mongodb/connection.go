// Package mongodb is a thin mongo-driver connection wrapper, grounded on
// the teacher's common/mmongo.
package mongodb

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lerianstudio/eventledger/internal/platform/log"
)

// Connection holds a singleton mongo client, connecting lazily on first
// use rather than the teacher's connect-or-panic constructor.
type Connection struct {
	URI      string
	Database string
	Logger   log.Logger

	mu     sync.Mutex
	client *mongo.Client
}

// Connect dials the client and verifies connectivity with a ping.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connectLocked(ctx)
}

func (c *Connection) connectLocked(ctx context.Context) error {
	if c.client != nil {
		return nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return fmt.Errorf("mongodb: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb: ping: %w", err)
	}

	if c.Logger != nil {
		c.Logger.Info("connected to mongodb")
	}

	c.client = client

	return nil
}

// Collection returns the named collection in c.Database, connecting
// lazily if needed.
func (c *Connection) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}

	return c.client.Database(c.Database).Collection(name), nil
}

// Close disconnects the client.
func (c *Connection) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}

	return c.client.Disconnect(ctx)
}
