package events

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tm-acme-shop/smartfold-composer/internal/clients"
	"github.com/tm-acme-shop/smartfold-composer/internal/config"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"go.uber.org/zap"
)

// OrderCreator creates orders in the backend.
type OrderCreator interface {
	CreateOrder(ctx context.Context, payload *models.OrderPayload) (*clients.CreatedOrder, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaForwarder consumes submitted orders and creates them through the
// order API. A failed create is logged and the message is not retried.
type KafkaForwarder struct {
	reader  messageReader
	orders  OrderCreator
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped bool
}

// NewKafkaForwarder creates a forwarder reading the submitted topic.
func NewKafkaForwarder(cfg config.KafkaConfig, orders OrderCreator, logger *zap.Logger) *KafkaForwarder {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.SubmittedTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	return newKafkaForwarder(reader, orders, logger)
}

func newKafkaForwarder(reader messageReader, orders OrderCreator, logger *zap.Logger) *KafkaForwarder {
	return &KafkaForwarder{
		reader: reader,
		orders: orders,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Start consumes until ctx is cancelled or Stop is called.
func (f *KafkaForwarder) Start(ctx context.Context) error {
	f.logger.Info("Starting submission forwarder")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.stopCh:
			f.logger.Info("Submission forwarder stopped")
			return nil
		default:
		}

		msg, err := f.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, kafka.ErrGroupClosed) || f.isStopped() {
				f.logger.Info("Submission forwarder stopped")
				return nil
			}
			f.logger.Error("Failed to read message", zap.Error(err))
			continue
		}

		f.handleMessage(ctx, msg)
	}
}

func (f *KafkaForwarder) isStopped() bool {
	select {
	case <-f.stopCh:
		return true
	default:
		return false
	}
}

// Stop stops the forwarder and closes the reader.
func (f *KafkaForwarder) Stop() {
	if f.stopped {
		return
	}
	f.stopped = true
	close(f.stopCh)
	if err := f.reader.Close(); err != nil {
		f.logger.Warn("Failed to close reader", zap.Error(err))
	}
}

func (f *KafkaForwarder) handleMessage(ctx context.Context, msg kafka.Message) {
	f.logger.Debug("Received message",
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	event, err := DecodeSubmittedEvent(msg.Value)
	if err != nil {
		f.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.Type {
	case EventTypeOrderSubmitted:
		f.forward(ctx, event)
	default:
		f.logger.Debug("Ignoring unknown event type", zap.String("type", string(event.Type)))
	}
}

func (f *KafkaForwarder) forward(ctx context.Context, event *SubmittedEvent) {
	_ = forwardOrder(ctx, f.orders, f.logger, event)
}

// forwardOrder creates the submitted order through the order API. Failures
// are logged and returned so broker consumers can settle the message.
func forwardOrder(ctx context.Context, orders OrderCreator, logger *zap.Logger, event *SubmittedEvent) error {
	created, err := orders.CreateOrder(ctx, &event.Order.Payload)
	if err != nil {
		logger.Error("Failed to create order",
			zap.String("event_id", event.ID),
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
		return err
	}

	logger.Info("Order forwarded",
		zap.String("event_id", event.ID),
		zap.String("submission_id", event.Order.ID),
		zap.Int64("order_id", created.ID),
	)
	return nil
}
