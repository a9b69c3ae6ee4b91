package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"github.com/tm-acme-shop/smartfold-composer/internal/service"
)

func TestQuote_RepricesAndValidates(t *testing.T) {
	now := time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)
	state := models.OrderState{
		Lines: []models.LineItem{
			{Kind: models.ServiceLaundry, Weight: 3},
			{Kind: models.ServicePressing, Categories: []models.CategoryQty{{Name: "Casual Wear", Qty: 2}}},
		},
		Express:           true,
		PremiumAddonCount: 2,
	}

	result := quote(state, now, time.UTC)

	assert.Equal(t, int64(850), result.Totals.BaseSubtotal)
	assert.Equal(t, int64(213), result.Totals.ExpressFee)
	assert.Equal(t, int64(800), result.Totals.PremiumAddonFee)
	assert.Equal(t, int64(1863), result.Totals.Total)
	assert.False(t, result.CanSubmit)
	assert.Nil(t, result.Payload)
	assert.Equal(t, service.MsgPickupRequired, result.Errors["pickup"])
}

func TestQuote_ValidOrderHasPayload(t *testing.T) {
	now := time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)
	state := models.OrderState{
		Lines:        []models.LineItem{{ID: "keep", Kind: models.ServicePremiumService, Count: 1, Amount: 400}},
		PickupDate:   "2030-01-01T08:00",
		DeliveryDate: "2030-01-01T18:00",
	}

	result := quote(state, now, time.UTC)

	assert.True(t, result.CanSubmit)
	require.NotNil(t, result.Payload)
	assert.Equal(t, int64(400), result.Payload.Total)
	assert.Empty(t, result.Errors)
}

func TestPrintRates(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	printRates(cmd, service.DefaultRates())

	text := out.String()
	assert.Contains(t, text, "LKR 250 / kg")
	assert.Contains(t, text, "Wash & Iron")
	assert.Contains(t, text, "Delicates / Premium")
	assert.Contains(t, text, "+25% of subtotal")
}
