package models

// ServiceKind tags a line item with the service it prices.
type ServiceKind string

const (
	ServiceLaundry        ServiceKind = "laundry"
	ServiceDryCleaning    ServiceKind = "dry"
	ServicePressing       ServiceKind = "pressing"
	ServiceWashIron       ServiceKind = "washiron"
	ServicePremiumService ServiceKind = "premiumService"
)

// ServiceFamily groups kinds that share a line shape.
type ServiceFamily int

const (
	FamilyUnknown ServiceFamily = iota
	FamilyWeight
	FamilyCategory
	FamilyPremium
)

// Family returns the line shape used by the kind.
func (k ServiceKind) Family() ServiceFamily {
	switch k {
	case ServiceLaundry, ServiceDryCleaning:
		return FamilyWeight
	case ServicePressing, ServiceWashIron:
		return FamilyCategory
	case ServicePremiumService:
		return FamilyPremium
	default:
		return FamilyUnknown
	}
}

// Valid reports whether k is a known service kind.
func (k ServiceKind) Valid() bool {
	return k.Family() != FamilyUnknown
}

// CategoryQty is one garment category inside a pressing or wash & iron line.
type CategoryQty struct {
	Name  string `json:"name"`
	Qty   int    `json:"qty"`
	Price int64  `json:"price"`
}

// LineItem is one priced service entry. Kind selects which of the variant
// fields is meaningful: Weight for the weight family, Categories for the
// category family and Count for premium care.
type LineItem struct {
	ID           string        `json:"id"`
	Kind         ServiceKind   `json:"type"`
	ServiceLabel string        `json:"serviceLabel"`
	Weight       float64       `json:"weight,omitempty"`
	Categories   []CategoryQty `json:"categories,omitempty"`
	Count        int           `json:"count,omitempty"`
	Amount       int64         `json:"amount"`
}

// Clone returns a deep copy of the line.
func (l LineItem) Clone() LineItem {
	out := l
	if l.Categories != nil {
		out.Categories = make([]CategoryQty, len(l.Categories))
		copy(out.Categories, l.Categories)
	}
	return out
}

// Title returns the label shown for the line.
func (l LineItem) Title() string {
	if l.ServiceLabel != "" {
		return l.ServiceLabel
	}
	return string(l.Kind)
}

// ItemCount is the number of garments in a category line.
func (l LineItem) ItemCount() int {
	n := 0
	for _, c := range l.Categories {
		n += c.Qty
	}
	return n
}
