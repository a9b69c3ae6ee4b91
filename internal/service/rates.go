package service

import "github.com/tm-acme-shop/smartfold-composer/internal/models"

// Category is one garment category and its flat per-item price.
type Category struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// RateCatalog holds the per-unit prices used to price line items. Amounts
// are whole LKR.
type RateCatalog struct {
	LaundryPerKg     int64      `json:"laundryPerKg"`
	DryCleaningPerKg int64      `json:"dryCleaningPerKg"`
	PremiumPerItem   int64      `json:"premiumPerItem"`
	Pressing         []Category `json:"pressing"`
	WashIron         []Category `json:"washIron"`
}

var serviceLabels = map[models.ServiceKind]string{
	models.ServiceLaundry:        "Laundry",
	models.ServiceDryCleaning:    "Dry Cleaning",
	models.ServicePressing:       "Pressing",
	models.ServiceWashIron:       "Wash & Iron",
	models.ServicePremiumService: "Premium / Delicate Care",
}

// DefaultRates returns the SmartFold price list.
func DefaultRates() RateCatalog {
	return RateCatalog{
		LaundryPerKg:     250,
		DryCleaningPerKg: 400,
		PremiumPerItem:   400,
		Pressing: []Category{
			{"Casual Wear", 50},
			{"Formal Wear", 75},
			{"Ethnic / Traditional", 100},
			{"Bedding & Linen", 120},
			{"Curtains & Drapes", 150},
			{"Kids Wear", 60},
			{"Delicates / Premium", 200},
		},
		WashIron: []Category{
			{"Casual Wear", 75},
			{"Formal Wear", 100},
			{"Ethnic / Traditional", 125},
			{"Bedding & Linen", 145},
			{"Curtains & Drapes", 175},
			{"Kids Wear", 85},
			{"Delicates / Premium", 225},
		},
	}
}

// ServiceLabel returns the display label for kind.
func ServiceLabel(kind models.ServiceKind) string {
	return serviceLabels[kind]
}

// PerKg returns the per-kilogram rate of a weight-priced service.
func (r RateCatalog) PerKg(kind models.ServiceKind) (int64, bool) {
	switch kind {
	case models.ServiceLaundry:
		return r.LaundryPerKg, true
	case models.ServiceDryCleaning:
		return r.DryCleaningPerKg, true
	default:
		return 0, false
	}
}

// Categories returns the category table of a category-priced service in
// display order. The returned slice is a copy.
func (r RateCatalog) Categories(kind models.ServiceKind) []Category {
	var table []Category
	switch kind {
	case models.ServicePressing:
		table = r.Pressing
	case models.ServiceWashIron:
		table = r.WashIron
	default:
		return nil
	}
	out := make([]Category, len(table))
	copy(out, table)
	return out
}

// CategoryPrice looks up one category of a category-priced service.
func (r RateCatalog) CategoryPrice(kind models.ServiceKind, name string) (int64, bool) {
	for _, c := range r.Categories(kind) {
		if c.Name == name {
			return c.Price, true
		}
	}
	return 0, false
}

// CompanionPrice returns the price the same category has in the other
// category table, shown next to each row so customers can compare
// pressing with wash & iron.
func (r RateCatalog) CompanionPrice(kind models.ServiceKind, name string) (int64, bool) {
	switch kind {
	case models.ServicePressing:
		return r.CategoryPrice(models.ServiceWashIron, name)
	case models.ServiceWashIron:
		return r.CategoryPrice(models.ServicePressing, name)
	default:
		return 0, false
	}
}
