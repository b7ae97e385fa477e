package messaging

import (
	"context"
	"fmt"
	"sync"

	"go-clinic-management/internal/domain/entity"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// NewRabbitMQConnection dials the broker and declares the durable topic exchange
// events are published to
func NewRabbitMQConnection(url, exchange string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	logrus.Info("Successfully connected to RabbitMQ")

	return conn, nil
}

// channel is the subset of *amqp.Channel the publisher needs
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQPublisher sends domain events to a topic exchange, routed by event type
type RabbitMQPublisher struct {
	log      *logrus.Logger
	exchange string

	// amqp channels are not safe for concurrent publishing
	mu sync.Mutex
	ch channel
}

func NewRabbitMQPublisher(conn *amqp.Connection, exchange string, log *logrus.Logger) (*RabbitMQPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	return newPublisher(ch, exchange, log), nil
}

func newPublisher(ch channel, exchange string, log *logrus.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		log:      log,
		exchange: exchange,
		ch:       ch,
	}
}

func (p *RabbitMQPublisher) Publish(ctx context.Context, event entity.DomainEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.Type, err)
	}

	message := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		Body:         body,
		Headers: amqp.Table{
			"entity_kind": string(event.EntityKind),
			"entity_id":   event.EntityID,
		},
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, event.Type, false, false, message); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.log.Debugf("Event published: type=%s, entity=%s/%s", event.Type, event.EntityKind, event.EntityID)
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}
