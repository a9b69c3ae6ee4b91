package events

import (
	"context"
	"sync"

	"github.com/tm-acme-shop/smartfold-composer/internal/models"
)

// MockPublisher records submitted orders in memory. Setting Err makes every
// publish fail.
type MockPublisher struct {
	mu     sync.Mutex
	Events []*SubmittedEvent
	Err    error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Events: make([]*SubmittedEvent, 0),
	}
}

func (m *MockPublisher) PublishOrderSubmitted(ctx context.Context, order *models.SubmittedOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, newSubmittedEvent(order))
	return nil
}

// Published returns a copy of the recorded events.
func (m *MockPublisher) Published() []*SubmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*SubmittedEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
