package service

import (
	"time"

	"github.com/tm-acme-shop/smartfold-composer/internal/models"
)

// Date field messages.
const (
	MsgPickupRequired   = "Pickup date & time is required."
	MsgPickupInvalid    = "Pickup date & time is invalid."
	MsgPickupPast       = "Pickup must be now or later."
	MsgDeliveryRequired = "Delivery date & time is required."
	MsgDeliveryInvalid  = "Delivery date & time is invalid."
	MsgDeliveryOrder    = "Delivery must be after pickup."
	MsgTotalZero        = "Add at least one service before placing the order."
)

// DateTimeLayout is the datetime-local format used for pickup and delivery.
const DateTimeLayout = "2006-01-02T15:04"

var dateTimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// ParseLocalDateTime parses a datetime-local value in loc.
func ParseLocalDateTime(value string, loc *time.Location) (time.Time, error) {
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// FormatLocalDateTime renders t as a datetime-local value in loc.
func FormatLocalDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateTimeLayout)
}

// truncateToMinute drops seconds and below, the resolution of the inputs.
func truncateToMinute(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// ValidateDates checks pickup and delivery against now. Delivery is only
// compared with pickup once pickup itself is valid.
func ValidateDates(pickup, delivery string, now time.Time, loc *time.Location) models.DateErrors {
	if loc == nil {
		loc = time.Local
	}
	var errs models.DateErrors
	nowMinute := truncateToMinute(now, loc)

	var pickupAt time.Time
	if pickup == "" {
		errs.Pickup = MsgPickupRequired
	} else if t, err := ParseLocalDateTime(pickup, loc); err != nil {
		errs.Pickup = MsgPickupInvalid
	} else if t.Before(nowMinute) {
		errs.Pickup = MsgPickupPast
	} else {
		pickupAt = t
	}

	if delivery == "" {
		errs.Delivery = MsgDeliveryRequired
	} else if t, err := ParseLocalDateTime(delivery, loc); err != nil {
		errs.Delivery = MsgDeliveryInvalid
	} else if errs.Pickup == "" && !t.After(pickupAt) {
		errs.Delivery = MsgDeliveryOrder
	}

	return errs
}

// MinDeliveryDate is the earliest value the delivery input should offer:
// the pickup time when it is set, otherwise now.
func MinDeliveryDate(pickup string, now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	nowMinute := truncateToMinute(now, loc)
	if t, err := ParseLocalDateTime(pickup, loc); err == nil {
		return FormatLocalDateTime(t, loc)
	}
	return FormatLocalDateTime(nowMinute, loc)
}
