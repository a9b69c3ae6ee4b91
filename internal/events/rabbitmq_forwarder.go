package events

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type deliveryChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// RabbitForwarder consumes submitted orders from the RabbitMQ queue and
// creates them through the order API. Forwarded messages are acked; messages
// that cannot be decoded or created are nacked without requeue.
type RabbitForwarder struct {
	ch       deliveryChannel
	queue    string
	tag      string
	orders   OrderCreator
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRabbitForwarder opens a channel on conn, declares queue and limits the
// channel to one unacknowledged message.
func NewRabbitForwarder(conn *amqp.Connection, queue, tag string, orders OrderCreator, logger *zap.Logger) (*RabbitForwarder, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare %s: %w", queue, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	return newRabbitForwarder(ch, queue, tag, orders, logger), nil
}

func newRabbitForwarder(ch deliveryChannel, queue, tag string, orders OrderCreator, logger *zap.Logger) *RabbitForwarder {
	return &RabbitForwarder{
		ch:     ch,
		queue:  queue,
		tag:    tag,
		orders: orders,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start consumes until ctx is cancelled, Stop is called or the broker closes
// the delivery channel.
func (f *RabbitForwarder) Start(ctx context.Context) error {
	msgs, err := f.ch.Consume(
		f.queue,
		f.tag,
		false, // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", f.queue, err)
	}

	f.logger.Info("Starting submission forwarder", zap.String("queue", f.queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.stopCh:
			f.logger.Info("Submission forwarder stopped")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				f.logger.Info("Delivery channel closed", zap.String("queue", f.queue))
				return nil
			}
			f.handleDelivery(ctx, msg)
		}
	}
}

// Stop stops the forwarder and closes the channel.
func (f *RabbitForwarder) Stop() {
	f.stopOnce.Do(func() {
		close(f.stopCh)
		if err := f.ch.Close(); err != nil {
			f.logger.Warn("Failed to close channel", zap.Error(err))
		}
	})
}

func (f *RabbitForwarder) handleDelivery(ctx context.Context, msg amqp.Delivery) {
	f.logger.Debug("Received message",
		zap.String("queue", f.queue),
		zap.String("message_id", msg.MessageId),
		zap.Uint64("delivery_tag", msg.DeliveryTag),
	)

	event, err := DecodeSubmittedEvent(msg.Body)
	if err != nil {
		f.logger.Error("Failed to unmarshal event", zap.Error(err))
		f.settle(msg.Nack(false, false))
		return
	}

	if event.Type != EventTypeOrderSubmitted {
		f.logger.Debug("Ignoring unknown event type", zap.String("type", string(event.Type)))
		f.settle(msg.Ack(false))
		return
	}

	if err := forwardOrder(ctx, f.orders, f.logger, event); err != nil {
		f.settle(msg.Nack(false, false))
		return
	}
	f.settle(msg.Ack(false))
}

func (f *RabbitForwarder) settle(err error) {
	if err != nil {
		f.logger.Warn("Failed to settle message", zap.Error(err))
	}
}
