package models

// SnapshotVersion is written into every persisted snapshot. Snapshots
// without a version predate versioning and share the version 1 layout.
const SnapshotVersion = 1

// DraftSnapshot is the auto-saved copy of an unsubmitted order.
type DraftSnapshot struct {
	Version int `json:"version,omitempty"`
	OrderState
	Totals Totals `json:"totals"`
}

// LastOrderSnapshot is the most recently submitted order. State is absent in
// snapshots written by older clients, which only stored the payload.
type LastOrderSnapshot struct {
	Version int           `json:"version,omitempty"`
	State   *OrderState   `json:"state,omitempty"`
	Payload *OrderPayload `json:"payload,omitempty"`
}
