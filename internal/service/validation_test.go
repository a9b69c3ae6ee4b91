package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
)

func TestValidateDates(t *testing.T) {
	now := time.Date(2030, 5, 10, 9, 30, 45, 0, time.UTC)

	tests := []struct {
		name     string
		pickup   string
		delivery string
		want     models.DateErrors
	}{
		{"both empty", "", "", models.DateErrors{Pickup: MsgPickupRequired, Delivery: MsgDeliveryRequired}},
		{"valid", "2030-05-10T10:00", "2030-05-11T10:00", models.DateErrors{}},
		{"pickup this minute", "2030-05-10T09:30", "2030-05-10T09:31", models.DateErrors{}},
		{"pickup in past", "2030-05-10T09:29", "2030-05-11T10:00", models.DateErrors{Pickup: MsgPickupPast}},
		{"delivery equals pickup", "2030-05-10T10:00", "2030-05-10T10:00", models.DateErrors{Delivery: MsgDeliveryOrder}},
		{"delivery before pickup", "2030-05-10T10:00", "2030-05-10T09:45", models.DateErrors{Delivery: MsgDeliveryOrder}},
		{"delivery missing", "2030-05-10T10:00", "", models.DateErrors{Delivery: MsgDeliveryRequired}},
		{"delivery not compared with bad pickup", "2030-05-09T10:00", "2030-05-09T09:00", models.DateErrors{Pickup: MsgPickupPast}},
		{"pickup unparseable", "tomorrow", "2030-05-11T10:00", models.DateErrors{Pickup: MsgPickupInvalid}},
		{"delivery unparseable", "2030-05-10T10:00", "later", models.DateErrors{Delivery: MsgDeliveryInvalid}},
		{"seconds accepted", "2030-05-10T10:00:00", "2030-05-11T10:00:00", models.DateErrors{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateDates(tt.pickup, tt.delivery, now, time.UTC))
		})
	}
}

func TestValidateDates_UsesLocation(t *testing.T) {
	colombo, err := time.LoadLocation("Asia/Colombo")
	require.NoError(t, err)

	// 04:00 UTC is 09:30 in Colombo.
	now := time.Date(2030, 5, 10, 4, 0, 0, 0, time.UTC)

	assert.Equal(t, MsgPickupPast, ValidateDates("2030-05-10T09:29", "2030-05-11T10:00", now, colombo).Pickup)
	assert.Empty(t, ValidateDates("2030-05-10T09:30", "2030-05-11T10:00", now, colombo).Pickup)
}

func TestMinDeliveryDate(t *testing.T) {
	now := time.Date(2030, 5, 10, 9, 30, 45, 0, time.UTC)

	assert.Equal(t, "2030-05-10T09:30", MinDeliveryDate("", now, time.UTC))
	assert.Equal(t, "2030-05-12T08:00", MinDeliveryDate("2030-05-12T08:00", now, time.UTC))
	assert.Equal(t, "2030-05-10T09:30", MinDeliveryDate("garbage", now, time.UTC))
}

func TestParseAndFormatLocalDateTime(t *testing.T) {
	parsed, err := ParseLocalDateTime("2030-01-02T03:04", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 2, 3, 4, 0, 0, time.UTC), parsed)
	assert.Equal(t, "2030-01-02T03:04", FormatLocalDateTime(parsed, time.UTC))

	_, err = ParseLocalDateTime("2030/01/02 03:04", time.UTC)
	assert.Error(t, err)
}
