package models

// OrderState is the in-progress order owned by one composer.
type OrderState struct {
	Lines             []LineItem `json:"lines"`
	Express           bool       `json:"express"`
	PremiumAddonCount int        `json:"premiumAddonCount"`
	PickupDate        string     `json:"pickupDate"`
	DeliveryDate      string     `json:"deliveryDate"`
}

// Clone returns a deep copy of the state.
func (s OrderState) Clone() OrderState {
	out := s
	out.Lines = make([]LineItem, len(s.Lines))
	for i, l := range s.Lines {
		out.Lines[i] = l.Clone()
	}
	return out
}

// IsEmpty reports whether nothing billable has been selected.
func (s OrderState) IsEmpty() bool {
	return len(s.Lines) == 0 && !s.Express && s.PremiumAddonCount == 0
}

// Totals is derived from an OrderState and never stored on its own.
type Totals struct {
	BaseSubtotal    int64 `json:"baseSubtotal"`
	ExpressFee      int64 `json:"expressFee"`
	PremiumAddonFee int64 `json:"premiumAddonFee"`
	Total           int64 `json:"total"`
}

// DateErrors holds the field messages produced by date validation.
type DateErrors struct {
	Pickup   string `json:"pickup,omitempty"`
	Delivery string `json:"delivery,omitempty"`
}

// Valid reports whether both fields passed.
func (d DateErrors) Valid() bool {
	return d.Pickup == "" && d.Delivery == ""
}
