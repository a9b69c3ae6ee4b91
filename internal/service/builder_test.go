package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
)

func TestLineBuilder_WeightLine(t *testing.T) {
	b := NewLineBuilder(DefaultRates())

	tests := []struct {
		name   string
		kind   models.ServiceKind
		weight float64
		amount int64
	}{
		{"laundry 3kg", models.ServiceLaundry, 3, 750},
		{"laundry minimum", models.ServiceLaundry, 0.5, 125},
		{"dry 1.5kg", models.ServiceDryCleaning, 1.5, 600},
		{"off-step weight", models.ServiceLaundry, 0.7, 175},
		{"rounds half away from zero", models.ServiceLaundry, 1.01, 253},
		{"exact decimal product", models.ServiceLaundry, 1.15, 288},
		{"below minimum", models.ServiceLaundry, 0.4, 0},
		{"zero", models.ServiceDryCleaning, 0, 0},
		{"negative", models.ServiceLaundry, -2, 0},
		{"nan", models.ServiceLaundry, math.NaN(), 0},
		{"inf", models.ServiceLaundry, math.Inf(1), 0},
		{"wrong family", models.ServicePressing, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := b.WeightLine(tt.kind, tt.weight)
			assert.Equal(t, tt.amount, line.Amount)
			assert.Equal(t, tt.kind, line.Kind)
		})
	}
}

func TestLineBuilder_WeightLineLabelAndWeight(t *testing.T) {
	line := NewLineBuilder(DefaultRates()).WeightLine(models.ServiceDryCleaning, 2.456)

	assert.Equal(t, "Dry Cleaning", line.ServiceLabel)
	assert.Equal(t, 2.46, line.Weight)
	assert.Equal(t, int64(982), line.Amount)
	assert.Empty(t, line.ID)
}

func TestLineBuilder_CategoryLine(t *testing.T) {
	b := NewLineBuilder(DefaultRates())

	line := b.CategoryLine(models.ServicePressing, map[string]int{"Casual Wear": 2})
	assert.Equal(t, int64(100), line.Amount)
	assert.Equal(t, []models.CategoryQty{{Name: "Casual Wear", Qty: 2, Price: 50}}, line.Categories)
	assert.Equal(t, "Pressing", line.ServiceLabel)

	line = b.CategoryLine(models.ServiceWashIron, map[string]int{
		"Kids Wear":         1,
		"Casual Wear":       3,
		"Formal Wear":       0,
		"Socks":             9,
		"Curtains & Drapes": -1,
	})
	assert.Equal(t, int64(3*75+85), line.Amount)
	assert.Equal(t, []models.CategoryQty{
		{Name: "Casual Wear", Qty: 3, Price: 75},
		{Name: "Kids Wear", Qty: 1, Price: 85},
	}, line.Categories)
}

func TestLineBuilder_CategoryLineEmpty(t *testing.T) {
	line := NewLineBuilder(DefaultRates()).CategoryLine(models.ServiceWashIron, nil)

	assert.Equal(t, int64(0), line.Amount)
	assert.NotNil(t, line.Categories)
	assert.Empty(t, line.Categories)
}

func TestLineBuilder_PremiumLine(t *testing.T) {
	b := NewLineBuilder(DefaultRates())

	line := b.PremiumLine(3)
	assert.Equal(t, int64(1200), line.Amount)
	assert.Equal(t, 3, line.Count)
	assert.Equal(t, models.ServicePremiumService, line.Kind)

	assert.Equal(t, int64(0), b.PremiumLine(0).Amount)
	assert.Equal(t, int64(0), b.PremiumLine(-4).Amount)
}

func TestValidWeight(t *testing.T) {
	assert.True(t, ValidWeight(0.5))
	assert.True(t, ValidWeight(3))
	assert.True(t, ValidWeight(12.5))
	assert.False(t, ValidWeight(0.7))
	assert.False(t, ValidWeight(0))
	assert.False(t, ValidWeight(math.NaN()))
	assert.False(t, ValidWeight(math.Inf(1)))
}
