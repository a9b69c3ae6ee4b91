package service

import (
	"github.com/shopspring/decimal"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
)

// ExpressRatePercent is the share of the base subtotal charged for express
// service.
const ExpressRatePercent = 25

var expressRate = decimal.New(ExpressRatePercent, -2)

// roundAmount rounds half away from zero to whole LKR.
func roundAmount(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// ExpressFee computes the express surcharge on a base subtotal.
func ExpressFee(baseSubtotal int64) int64 {
	return roundAmount(decimal.NewFromInt(baseSubtotal).Mul(expressRate))
}

// ComputeTotals derives the order totals from state. Standalone premium
// lines and the premium add-on are both charged; they are separate
// selections that happen to share a rate.
func ComputeTotals(state models.OrderState, rates RateCatalog) models.Totals {
	var totals models.Totals
	for _, line := range state.Lines {
		totals.BaseSubtotal += line.Amount
	}

	if state.Express {
		totals.ExpressFee = ExpressFee(totals.BaseSubtotal)
	}

	if state.PremiumAddonCount > 0 {
		totals.PremiumAddonFee = int64(state.PremiumAddonCount) * rates.PremiumPerItem
	}

	totals.Total = totals.BaseSubtotal + totals.ExpressFee + totals.PremiumAddonFee
	return totals
}
