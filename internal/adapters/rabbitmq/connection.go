// Package rabbitmq adapts the Subscription Hub to an out-of-process
// fan-out exchange, for subscribers that cannot hold a long-lived
// in-process channel (a separate worker, another service).
package rabbitmq

import (
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Connection lazily dials a RabbitMQ broker and caches the channel,
// grounded on the teacher's connection-wrapper pattern (mredis,
// mpostgres) rather than its libRabbitmq.RabbitMQConnection, which this
// spec's scope does not need (no OpenTelemetry spans, no reconnect
// supervisor).
type Connection struct {
	URI string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Channel returns the cached channel, dialing on first use.
func (c *Connection) Channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		return c.channel, nil
	}

	conn, err := amqp.Dial(c.URI)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	c.conn = conn
	c.channel = ch

	return ch, nil
}

// Close tears down the channel and connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel != nil {
		_ = c.channel.Close()
	}

	if c.conn != nil {
		return c.conn.Close()
	}

	return nil
}
