package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
)

func TestBuildPayload_ItemShapes(t *testing.T) {
	b := NewLineBuilder(DefaultRates())
	state := models.OrderState{
		Lines: []models.LineItem{
			b.WeightLine(models.ServiceLaundry, 1),
			b.CategoryLine(models.ServicePressing, map[string]int{"Formal Wear": 1}),
			b.PremiumLine(2),
		},
	}

	payload := BuildPayload(state, ComputeTotals(state, DefaultRates()))

	require.Len(t, payload.Items, 3)

	weightItem := payload.Items[0]
	assert.Equal(t, models.ServiceLaundry, weightItem.Kind)
	require.NotNil(t, weightItem.Weight)
	assert.Nil(t, weightItem.Categories)
	assert.Nil(t, weightItem.Count)

	catItem := payload.Items[1]
	assert.Equal(t, "Pressing", catItem.Service)
	assert.Equal(t, []models.CategoryQty{{Name: "Formal Wear", Qty: 1, Price: 75}}, catItem.Categories)
	assert.Nil(t, catItem.Weight)

	premiumItem := payload.Items[2]
	require.NotNil(t, premiumItem.Count)
	assert.Equal(t, 2, *premiumItem.Count)
	assert.Equal(t, int64(800), premiumItem.Amount)

	assert.Equal(t, int64(250+75+800), payload.Total)
}

func TestBuildPayload_EmptyItemsNotNil(t *testing.T) {
	payload := BuildPayload(models.OrderState{}, models.Totals{})
	assert.NotNil(t, payload.Items)
}

func TestStateFromPayload_RoundTrip(t *testing.T) {
	b := NewLineBuilder(DefaultRates())
	state := models.OrderState{
		Lines: []models.LineItem{
			b.WeightLine(models.ServiceDryCleaning, 1.5),
			b.CategoryLine(models.ServiceWashIron, map[string]int{"Kids Wear": 2}),
			b.PremiumLine(1),
		},
		Express:           true,
		PremiumAddonCount: 3,
		PickupDate:        "2030-01-01T09:00",
		DeliveryDate:      "2030-01-01T17:00",
	}
	payload := BuildPayload(state, ComputeTotals(state, DefaultRates()))

	rebuilt := StateFromPayload(payload, sequentialIDs())

	require.Len(t, rebuilt.Lines, 3)
	for i := range state.Lines {
		want := state.Lines[i]
		want.ID = rebuilt.Lines[i].ID
		assert.Equal(t, want, rebuilt.Lines[i])
	}
	assert.Equal(t, state.Express, rebuilt.Express)
	assert.Equal(t, state.PremiumAddonCount, rebuilt.PremiumAddonCount)
	assert.Equal(t, payload.Total, ComputeTotals(rebuilt, DefaultRates()).Total)
}

func TestStateFromPayload_UntaggedItems(t *testing.T) {
	weight := 2.5
	count := 2
	payload := &models.OrderPayload{Items: []models.PayloadItem{
		{Service: "Laundry", Weight: &weight, Amount: 625},
		{Service: "Pressing", Categories: []models.CategoryQty{{Name: "Casual Wear", Qty: 1, Price: 50}, {Name: "Kids Wear", Qty: 0, Price: 60}}, Amount: 50},
		{Service: "Mystery"},
		{Kind: "ironing", Service: "Premium / Delicate Care", Count: &count, Amount: 800},
	}}

	state := StateFromPayload(payload, sequentialIDs())

	require.Len(t, state.Lines, 3)
	assert.Equal(t, models.ServiceLaundry, state.Lines[0].Kind)
	assert.Equal(t, models.ServicePressing, state.Lines[1].Kind)
	assert.Len(t, state.Lines[1].Categories, 1)
	assert.Equal(t, models.ServicePremiumService, state.Lines[2].Kind)
	assert.Equal(t, 2, state.Lines[2].Count)
	assert.Equal(t, []string{"line-1", "line-2", "line-3"}, []string{state.Lines[0].ID, state.Lines[1].ID, state.Lines[2].ID})
}

func TestStateFromPayload_Nil(t *testing.T) {
	state := StateFromPayload(nil, sequentialIDs())
	assert.True(t, state.IsEmpty())
	assert.NotNil(t, state.Lines)
}
