package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	mu      sync.Mutex
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcknowledger) settled() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.acked) + len(a.nacked)
}

type fakeDeliveries struct {
	msgs       chan amqp.Delivery
	consumeErr error
	queue      string
	closed     bool
}

func (d *fakeDeliveries) Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	d.queue = queue
	if d.consumeErr != nil {
		return nil, d.consumeErr
	}
	return d.msgs, nil
}

func (d *fakeDeliveries) Close() error {
	d.closed = true
	return nil
}

func delivery(ack amqp.Acknowledger, tag uint64, body []byte) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: body}
}

func TestRabbitForwarder_HandleDelivery(t *testing.T) {
	ack := &fakeAcknowledger{}
	creator := &fakeCreator{}
	f := newRabbitForwarder(&fakeDeliveries{}, "q", "test", creator, zap.NewNop())
	ctx := context.Background()

	f.handleDelivery(ctx, delivery(ack, 1, encode(t, newSubmittedEvent(testOrder()))))
	f.handleDelivery(ctx, delivery(ack, 2, []byte("not json")))
	f.handleDelivery(ctx, delivery(ack, 3, encode(t, &SubmittedEvent{Type: "order.other"})))

	require.Len(t, creator.payloads, 1)
	assert.Equal(t, int64(1738), creator.payloads[0].Total)
	assert.Equal(t, []uint64{1, 3}, ack.acked)
	assert.Equal(t, []uint64{2}, ack.nacked)
	assert.Equal(t, []bool{false}, ack.requeue)
}

func TestRabbitForwarder_CreateErrorNacks(t *testing.T) {
	ack := &fakeAcknowledger{}
	creator := &fakeCreator{err: errors.New("backend down")}
	f := newRabbitForwarder(&fakeDeliveries{}, "q", "test", creator, zap.NewNop())

	f.handleDelivery(context.Background(), delivery(ack, 7, encode(t, newSubmittedEvent(testOrder()))))

	assert.Len(t, creator.payloads, 1)
	assert.Empty(t, ack.acked)
	assert.Equal(t, []uint64{7}, ack.nacked)
}

func TestRabbitForwarder_StartStops(t *testing.T) {
	ack := &fakeAcknowledger{}
	deliveries := &fakeDeliveries{msgs: make(chan amqp.Delivery, 1)}
	deliveries.msgs <- delivery(ack, 1, encode(t, newSubmittedEvent(testOrder())))
	creator := &fakeCreator{}
	f := newRabbitForwarder(deliveries, "laundry.orders.submitted", "test", creator, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f.Start(ctx) }()

	require.Eventually(t, func() bool { return ack.settled() == 1 }, time.Second, 5*time.Millisecond)

	f.Stop()
	f.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("forwarder did not stop")
	}
	assert.Equal(t, "laundry.orders.submitted", deliveries.queue)
	assert.True(t, deliveries.closed)
	assert.Len(t, creator.payloads, 1)
	assert.Equal(t, []uint64{1}, ack.acked)
}

func TestRabbitForwarder_StartReturnsOnClosedChannel(t *testing.T) {
	deliveries := &fakeDeliveries{msgs: make(chan amqp.Delivery)}
	close(deliveries.msgs)
	f := newRabbitForwarder(deliveries, "q", "test", &fakeCreator{}, zap.NewNop())

	assert.NoError(t, f.Start(context.Background()))
}

func TestRabbitForwarder_ConsumeError(t *testing.T) {
	f := newRabbitForwarder(&fakeDeliveries{consumeErr: amqp.ErrClosed}, "q", "test", &fakeCreator{}, zap.NewNop())

	assert.ErrorIs(t, f.Start(context.Background()), amqp.ErrClosed)
}
