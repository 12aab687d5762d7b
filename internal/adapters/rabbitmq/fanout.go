package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lerianstudio/eventledger/internal/domain"
	"github.com/lerianstudio/eventledger/internal/platform/log"
)

// DefaultExchange is the topic exchange every published event is routed
// through, keyed by the event's Type (e.g. "ContainerCreated").
const DefaultExchange = "eventledger.events"

// Publisher mirrors the Subscription Hub onto a topic exchange, for
// consumers running in a different process than the dispatcher.
type Publisher struct {
	conn     *Connection
	exchange string
	logger   log.Logger
}

// NewPublisher builds a Publisher bound to conn.
func NewPublisher(conn *Connection, logger log.Logger) *Publisher {
	return &Publisher{conn: conn, exchange: DefaultExchange, logger: logger}
}

// DeclareExchange asserts the topic exchange exists. Call once at
// startup before publishing.
func (p *Publisher) DeclareExchange() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}

	return ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil)
}

// Publish sends one event to the exchange, routed by event type. Errors
// are logged rather than propagated: a subscriber mirror lagging behind
// the authoritative log must never block or fail an append.
func (p *Publisher) Publish(ctx context.Context, e domain.Event) {
	ch, err := p.conn.Channel()
	if err != nil {
		p.logError(err)
		return
	}

	body, err := json.Marshal(e)
	if err != nil {
		p.logError(err)
		return
	}

	err = ch.PublishWithContext(ctx, p.exchange, e.Type, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		p.logError(err)
	}
}

func (p *Publisher) logError(err error) {
	if p.logger != nil {
		p.logger.Errorf("rabbitmq publish failed: %v", err)
	}
}
