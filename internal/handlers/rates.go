package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"github.com/tm-acme-shop/smartfold-composer/internal/service"
)

type categoryRate struct {
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Companion int64  `json:"companion,omitempty"`
}

type serviceRates struct {
	Type       models.ServiceKind `json:"type"`
	Label      string             `json:"label"`
	PerKg      int64              `json:"perKg,omitempty"`
	PerItem    int64              `json:"perItem,omitempty"`
	Categories []categoryRate     `json:"categories,omitempty"`
}

var catalogOrder = []models.ServiceKind{
	models.ServiceLaundry,
	models.ServiceDryCleaning,
	models.ServicePressing,
	models.ServiceWashIron,
	models.ServicePremiumService,
}

// Rates handles GET /api/v1/rates
func (h *Handlers) Rates(c *gin.Context) {
	out := make([]serviceRates, 0, len(catalogOrder))
	for _, kind := range catalogOrder {
		out = append(out, describeRates(h.rates, kind))
	}
	c.JSON(http.StatusOK, gin.H{
		"services":            out,
		"expressRatePercent":  service.ExpressRatePercent,
		"premiumAddonPerItem": h.rates.PremiumPerItem,
	})
}

func describeRates(rates service.RateCatalog, kind models.ServiceKind) serviceRates {
	sr := serviceRates{Type: kind, Label: service.ServiceLabel(kind)}
	switch kind.Family() {
	case models.FamilyWeight:
		sr.PerKg, _ = rates.PerKg(kind)
	case models.FamilyPremium:
		sr.PerItem = rates.PremiumPerItem
	case models.FamilyCategory:
		for _, cat := range rates.Categories(kind) {
			companion, _ := rates.CompanionPrice(kind, cat.Name)
			sr.Categories = append(sr.Categories, categoryRate{
				Name:      cat.Name,
				Price:     cat.Price,
				Companion: companion,
			})
		}
	}
	return sr
}
