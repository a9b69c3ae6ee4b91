package models

import "time"

// OrderPayload is handed to the order-creation collaborator on submission.
type OrderPayload struct {
	PickupDate   string        `json:"pickupDate"`
	DeliveryDate string        `json:"deliveryDate"`
	Express      bool          `json:"express"`
	PremiumCount int           `json:"premiumCount"`
	Total        int64         `json:"total"`
	Items        []PayloadItem `json:"items"`
}

// PayloadItem is the service-specific projection of a line item. Weight and
// Count are pointers so that older payloads without a type tag can still be
// told apart by which field is present.
type PayloadItem struct {
	Kind       ServiceKind   `json:"type,omitempty"`
	Service    string        `json:"service"`
	Weight     *float64      `json:"weight,omitempty"`
	Categories []CategoryQty `json:"categories,omitempty"`
	Count      *int          `json:"count,omitempty"`
	Amount     int64         `json:"amount"`
}

// SubmittedOrder is the notification emitted once an order is confirmed.
type SubmittedOrder struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"sessionId"`
	Payload     OrderPayload `json:"payload"`
	SubmittedAt time.Time    `json:"submittedAt"`
}
