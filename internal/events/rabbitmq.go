package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"github.com/tm-acme-shop/smartfold-composer/internal/service"
	"go.uber.org/zap"
)

var _ service.SubmissionSink = (*RabbitPublisher)(nil)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes submitted orders to a durable RabbitMQ queue
// through the default exchange.
type RabbitPublisher struct {
	ch     amqpChannel
	queue  string
	logger *zap.Logger
}

// NewRabbitPublisher opens a channel on conn and declares queue.
func NewRabbitPublisher(conn *amqp.Connection, queue string, logger *zap.Logger) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare %s: %w", queue, err)
	}

	return &RabbitPublisher{ch: ch, queue: queue, logger: logger}, nil
}

// PublishOrderSubmitted publishes an order submitted event to the queue.
func (p *RabbitPublisher) PublishOrderSubmitted(ctx context.Context, order *models.SubmittedOrder) error {
	event := newSubmittedEvent(order)

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.Type, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(
		pubCtx,
		"",      // default exchange
		p.queue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Type:         string(event.Type),
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("queue", p.queue),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("Event published",
		zap.String("event_id", event.ID),
		zap.String("queue", p.queue),
		zap.String("submission_id", order.ID),
	)
	return nil
}

// Close closes the channel.
func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}
