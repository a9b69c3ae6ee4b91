package service

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
)

const (
	// MinWeightKg is the smallest weight accepted for weight-priced services.
	MinWeightKg = 0.5
	// WeightStepKg is the increment the weight input moves in.
	WeightStepKg = 0.5
)

// LineBuilder prices line items from raw selections. It never fails: an
// amount of zero marks a selection that must not be confirmed.
type LineBuilder struct {
	rates RateCatalog
}

// NewLineBuilder creates a builder over rates.
func NewLineBuilder(rates RateCatalog) *LineBuilder {
	return &LineBuilder{rates: rates}
}

// ValidWeight reports whether w is at least 0.5kg and a multiple of 0.5kg.
func ValidWeight(w float64) bool {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < MinWeightKg {
		return false
	}
	steps := w / WeightStepKg
	return steps == math.Trunc(steps)
}

// WeightLine prices a laundry or dry-cleaning line. The stored weight is
// kept to two decimals; the amount is the exact decimal product of the
// weight as entered and the rate, rounded half away from zero.
func (b *LineBuilder) WeightLine(kind models.ServiceKind, weightKg float64) models.LineItem {
	line := models.LineItem{
		Kind:         kind,
		ServiceLabel: ServiceLabel(kind),
		Weight:       weightKg,
	}

	rate, ok := b.rates.PerKg(kind)
	if !ok || math.IsNaN(weightKg) || math.IsInf(weightKg, 0) || weightKg < MinWeightKg {
		line.Weight = 0
		return line
	}

	weight := decimal.NewFromFloat(weightKg)
	line.Weight = weight.Round(2).InexactFloat64()
	line.Amount = roundAmount(weight.Mul(decimal.NewFromInt(rate)))
	return line
}

// CategoryLine prices a pressing or wash & iron line. Only categories with a
// positive quantity are kept, in catalog order; names missing from the
// catalog are ignored.
func (b *LineBuilder) CategoryLine(kind models.ServiceKind, quantities map[string]int) models.LineItem {
	line := models.LineItem{
		Kind:         kind,
		ServiceLabel: ServiceLabel(kind),
		Categories:   []models.CategoryQty{},
	}

	for _, c := range b.rates.Categories(kind) {
		qty := quantities[c.Name]
		if qty <= 0 {
			continue
		}
		line.Categories = append(line.Categories, models.CategoryQty{
			Name:  c.Name,
			Qty:   qty,
			Price: c.Price,
		})
		line.Amount += int64(qty) * c.Price
	}

	return line
}

// PremiumLine prices a standalone premium / delicate care line.
func (b *LineBuilder) PremiumLine(itemCount int) models.LineItem {
	line := models.LineItem{
		Kind:         models.ServicePremiumService,
		ServiceLabel: ServiceLabel(models.ServicePremiumService),
	}
	if itemCount < 1 {
		return line
	}
	line.Count = itemCount
	line.Amount = int64(itemCount) * b.rates.PremiumPerItem
	return line
}
