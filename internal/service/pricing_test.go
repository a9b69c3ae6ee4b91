package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
)

func TestComputeTotals_ExpressAndAddon(t *testing.T) {
	rates := DefaultRates()
	b := NewLineBuilder(rates)

	state := models.OrderState{
		Lines:             []models.LineItem{b.WeightLine(models.ServiceLaundry, 3)},
		Express:           true,
		PremiumAddonCount: 2,
	}

	assert.Equal(t, models.Totals{
		BaseSubtotal:    750,
		ExpressFee:      188,
		PremiumAddonFee: 800,
		Total:           1738,
	}, ComputeTotals(state, rates))
}

func TestComputeTotals_Empty(t *testing.T) {
	assert.Equal(t, models.Totals{}, ComputeTotals(models.OrderState{}, DefaultRates()))
}

func TestComputeTotals_ExpressOnEmptyOrder(t *testing.T) {
	totals := ComputeTotals(models.OrderState{Express: true}, DefaultRates())
	assert.Equal(t, int64(0), totals.Total)
}

func TestComputeTotals_PremiumLineAndAddonBothCharge(t *testing.T) {
	rates := DefaultRates()
	state := models.OrderState{
		Lines:             []models.LineItem{NewLineBuilder(rates).PremiumLine(1)},
		PremiumAddonCount: 1,
	}

	totals := ComputeTotals(state, rates)
	assert.Equal(t, int64(400), totals.BaseSubtotal)
	assert.Equal(t, int64(400), totals.PremiumAddonFee)
	assert.Equal(t, int64(800), totals.Total)
}

func TestComputeTotals_UsesStoredAmounts(t *testing.T) {
	state := models.OrderState{
		Lines: []models.LineItem{{Kind: models.ServiceLaundry, Weight: 3, Amount: 999}},
	}
	assert.Equal(t, int64(999), ComputeTotals(state, DefaultRates()).Total)
}

func TestExpressFee(t *testing.T) {
	assert.Equal(t, int64(0), ExpressFee(0))
	assert.Equal(t, int64(25), ExpressFee(100))
	assert.Equal(t, int64(188), ExpressFee(750))
	assert.Equal(t, int64(31), ExpressFee(125))
	assert.Equal(t, int64(32), ExpressFee(126))
}
