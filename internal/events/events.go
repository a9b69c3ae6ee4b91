// Package events carries submitted orders from the composer to the order
// API through a message broker.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
)

// EventType represents the type of composer event.
type EventType string

const (
	EventTypeOrderSubmitted EventType = "order.submitted"
)

// SubmittedEvent is the envelope published for every confirmed order.
type SubmittedEvent struct {
	ID        string                `json:"id"`
	Type      EventType             `json:"type"`
	SessionID string                `json:"session_id"`
	Order     models.SubmittedOrder `json:"order"`
	Metadata  map[string]string     `json:"metadata,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

func newSubmittedEvent(order *models.SubmittedOrder) *SubmittedEvent {
	return &SubmittedEvent{
		ID:        "evt_" + uuid.NewString(),
		Type:      EventTypeOrderSubmitted,
		SessionID: order.SessionID,
		Order:     *order,
		Metadata: map[string]string{
			"submission_id": order.ID,
		},
		Timestamp: time.Now().UTC(),
	}
}

// DecodeSubmittedEvent parses a published envelope.
func DecodeSubmittedEvent(data []byte) (*SubmittedEvent, error) {
	var event SubmittedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("decode submitted event: %w", err)
	}
	return &event, nil
}
