package service

import (
	"strings"

	"github.com/tm-acme-shop/smartfold-composer/internal/models"
)

// BuildPayload projects state into the order-creation payload.
func BuildPayload(state models.OrderState, totals models.Totals) *models.OrderPayload {
	payload := &models.OrderPayload{
		PickupDate:   state.PickupDate,
		DeliveryDate: state.DeliveryDate,
		Express:      state.Express,
		PremiumCount: state.PremiumAddonCount,
		Total:        totals.Total,
		Items:        make([]models.PayloadItem, 0, len(state.Lines)),
	}

	for _, line := range state.Lines {
		item := models.PayloadItem{
			Kind:    line.Kind,
			Service: line.Title(),
			Amount:  line.Amount,
		}
		switch line.Kind.Family() {
		case models.FamilyWeight:
			weight := line.Weight
			item.Weight = &weight
		case models.FamilyCategory:
			item.Categories = make([]models.CategoryQty, len(line.Categories))
			copy(item.Categories, line.Categories)
		case models.FamilyPremium:
			count := line.Count
			item.Count = &count
		}
		payload.Items = append(payload.Items, item)
	}

	return payload
}

// StateFromPayload rebuilds an order state from a submitted payload. Items
// carrying a type tag are mapped by it; untagged items from older clients
// are recognised by their weight, categories or count field. Items that
// match nothing are dropped.
func StateFromPayload(payload *models.OrderPayload, newID func() string) models.OrderState {
	state := emptyState()
	if payload == nil {
		return state
	}

	for _, item := range payload.Items {
		kind := payloadItemKind(item)
		if kind == "" {
			continue
		}

		line := models.LineItem{
			ID:           newID(),
			Kind:         kind,
			ServiceLabel: item.Service,
			Amount:       item.Amount,
		}
		if line.ServiceLabel == "" {
			line.ServiceLabel = ServiceLabel(kind)
		}

		switch kind.Family() {
		case models.FamilyWeight:
			if item.Weight != nil {
				line.Weight = *item.Weight
			}
		case models.FamilyCategory:
			line.Categories = []models.CategoryQty{}
			var sum int64
			for _, c := range item.Categories {
				if c.Qty <= 0 {
					continue
				}
				line.Categories = append(line.Categories, c)
				sum += int64(c.Qty) * c.Price
			}
			if line.Amount == 0 {
				line.Amount = sum
			}
		case models.FamilyPremium:
			if item.Count != nil {
				line.Count = *item.Count
			}
		}

		state.Lines = append(state.Lines, line)
	}

	state.Express = payload.Express
	if payload.PremiumCount > 0 {
		state.PremiumAddonCount = payload.PremiumCount
	}
	state.PickupDate = payload.PickupDate
	state.DeliveryDate = payload.DeliveryDate
	return state
}

func payloadItemKind(item models.PayloadItem) models.ServiceKind {
	if item.Kind.Valid() {
		return item.Kind
	}
	switch {
	case item.Weight != nil:
		if strings.Contains(item.Service, "Dry") {
			return models.ServiceDryCleaning
		}
		return models.ServiceLaundry
	case item.Categories != nil:
		if strings.Contains(item.Service, "Wash") {
			return models.ServiceWashIron
		}
		return models.ServicePressing
	case item.Count != nil:
		return models.ServicePremiumService
	default:
		return ""
	}
}
