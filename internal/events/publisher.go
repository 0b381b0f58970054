// Package events publishes storefront domain events to a message broker
// so downstream consumers (fulfilment, email) react asynchronously.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys published on the events exchange.
const (
	OrderCreated     = "order.created"
	SubscriberJoined = "subscriber.joined"
	ContactReceived  = "contact.received"
)

// Publisher emits a JSON event under a routing key. Publishing is
// best-effort from the caller's view; the HTTP request that triggered
// the event must not fail because the broker is down.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

const exchangeName = "tidewear.events"

// AMQPPublisher publishes persistent JSON messages on a topic exchange.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares the events exchange.
func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &AMQPPublisher{conn: conn, channel: ch}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.channel.PublishWithContext(ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher logs events instead of sending them. Used when no
// broker is configured and in tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	slog.Debug("event dropped, no broker configured", "routing_key", routingKey, "payload", payload)
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
