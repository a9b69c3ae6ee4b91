package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/smartfold-composer/internal/apperrors"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"github.com/tm-acme-shop/smartfold-composer/internal/service"
)

const (
	msgWeightTooLow   = "Weight must be at least 0.5 kg."
	msgNoCategories   = "Select at least one item."
	msgCountTooLow    = "Item count must be at least 1."
	msgUnknownService = "unknown service type"
)

type composerView struct {
	SessionID       string            `json:"sessionId"`
	State           models.OrderState `json:"state"`
	Totals          models.Totals     `json:"totals"`
	DateErrors      models.DateErrors `json:"dateErrors"`
	CanSubmit       bool              `json:"canSubmit"`
	Now             string            `json:"now"`
	MinDeliveryDate string            `json:"minDeliveryDate"`
	HasLastOrder    *bool             `json:"hasLastOrder,omitempty"`
}

func viewOf(cmp *service.Composer) composerView {
	return composerView{
		SessionID:       cmp.Session(),
		State:           cmp.State(),
		Totals:          cmp.Totals(),
		DateErrors:      cmp.DateErrors(),
		CanSubmit:       cmp.CanSubmit(),
		Now:             cmp.Now(),
		MinDeliveryDate: cmp.MinDeliveryDate(),
	}
}

func fullViewOf(ctx context.Context, cmp *service.Composer) composerView {
	view := viewOf(cmp)
	has := cmp.HasLastOrder(ctx)
	view.HasLastOrder = &has
	return view
}

func sessionID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.GetHeader(SessionHeader))
	if id == "" {
		badRequest(c, SessionHeader+" header is required")
		return "", false
	}
	return id, true
}

// withComposer runs fn against the request's session composer. fn writes
// the response on success; returned errors go through handleError.
func (h *Handlers) withComposer(c *gin.Context, fn func(ctx context.Context, cmp *service.Composer) error) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.registry.With(id, func(cmp *service.Composer) error {
		return fn(ctx, cmp)
	}); err != nil {
		h.handleError(c, err)
	}
}

// Mount handles POST /api/v1/composer/mount
func (h *Handlers) Mount(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	restored := h.registry.Mount(c.Request.Context(), id)

	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		c.JSON(http.StatusOK, gin.H{
			"restored": restored,
			"composer": fullViewOf(ctx, cmp),
		})
		return nil
	})
}

// GetComposer handles GET /api/v1/composer
func (h *Handlers) GetComposer(c *gin.Context) {
	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		c.JSON(http.StatusOK, fullViewOf(ctx, cmp))
		return nil
	})
}

// ReleaseSession handles DELETE /api/v1/composer. The composer is dropped
// from memory; its stored draft and last order are kept for the next mount.
func (h *Handlers) ReleaseSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if !h.registry.Release(id) {
		h.handleError(c, apperrors.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": true})
}

type weightLineRequest struct {
	Type   models.ServiceKind `json:"type" binding:"required"`
	Weight float64            `json:"weight"`
}

type categoryLineRequest struct {
	Type       models.ServiceKind `json:"type" binding:"required"`
	Quantities map[string]int     `json:"quantities"`
}

type premiumLineRequest struct {
	Count int `json:"count"`
}

type previewLineRequest struct {
	Type       models.ServiceKind `json:"type" binding:"required"`
	Weight     float64            `json:"weight"`
	Quantities map[string]int     `json:"quantities"`
	Count      int                `json:"count"`
}

// AddWeightLine handles POST /api/v1/composer/lines/weight
func (h *Handlers) AddWeightLine(c *gin.Context) {
	var req weightLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Type.Family() != models.FamilyWeight {
		badRequest(c, "type must be laundry or dry")
		return
	}

	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		line := cmp.Builder().WeightLine(req.Type, req.Weight)
		if line.Amount <= 0 {
			return apperrors.NewValidationError("weight", msgWeightTooLow)
		}
		h.addLine(ctx, c, cmp, line)
		return nil
	})
}

// AddCategoryLine handles POST /api/v1/composer/lines/category
func (h *Handlers) AddCategoryLine(c *gin.Context) {
	var req categoryLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Type.Family() != models.FamilyCategory {
		badRequest(c, "type must be pressing or washiron")
		return
	}

	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		line := cmp.Builder().CategoryLine(req.Type, req.Quantities)
		if line.Amount <= 0 {
			return apperrors.NewValidationError("quantities", msgNoCategories)
		}
		h.addLine(ctx, c, cmp, line)
		return nil
	})
}

// AddPremiumLine handles POST /api/v1/composer/lines/premium
func (h *Handlers) AddPremiumLine(c *gin.Context) {
	var req premiumLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		line := cmp.Builder().PremiumLine(req.Count)
		if line.Amount <= 0 {
			return apperrors.NewValidationError("count", msgCountTooLow)
		}
		h.addLine(ctx, c, cmp, line)
		return nil
	})
}

func (h *Handlers) addLine(ctx context.Context, c *gin.Context, cmp *service.Composer, line models.LineItem) {
	added := cmp.AddLine(ctx, line)
	c.JSON(http.StatusCreated, gin.H{
		"line":     added,
		"composer": viewOf(cmp),
	})
}

// PreviewLine handles POST /api/v1/composer/lines/preview. The line is
// priced but not added.
func (h *Handlers) PreviewLine(c *gin.Context) {
	var req previewLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		b := cmp.Builder()
		var line models.LineItem
		switch req.Type.Family() {
		case models.FamilyWeight:
			line = b.WeightLine(req.Type, req.Weight)
		case models.FamilyCategory:
			line = b.CategoryLine(req.Type, req.Quantities)
		case models.FamilyPremium:
			line = b.PremiumLine(req.Count)
		default:
			badRequest(c, msgUnknownService)
			return nil
		}
		c.JSON(http.StatusOK, gin.H{
			"line":  line,
			"valid": line.Amount > 0,
		})
		return nil
	})
}

// RemoveLine handles DELETE /api/v1/composer/lines/:id
func (h *Handlers) RemoveLine(c *gin.Context) {
	lineID := c.Param("id")

	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		if !cmp.RemoveLine(ctx, lineID) {
			return apperrors.ErrNotFound
		}
		c.JSON(http.StatusOK, viewOf(cmp))
		return nil
	})
}

type expressRequest struct {
	Express *bool `json:"express"`
}

// SetExpress handles PUT /api/v1/composer/express. An empty body toggles
// the surcharge.
func (h *Handlers) SetExpress(c *gin.Context) {
	var req expressRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}

	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		if req.Express == nil {
			cmp.ToggleExpress(ctx)
		} else {
			cmp.SetExpress(ctx, *req.Express)
		}
		c.JSON(http.StatusOK, viewOf(cmp))
		return nil
	})
}

type premiumAddonRequest struct {
	Count int `json:"count"`
}

// SetPremiumAddon handles PUT /api/v1/composer/premium-addon
func (h *Handlers) SetPremiumAddon(c *gin.Context) {
	var req premiumAddonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		cmp.SetPremiumAddonCount(ctx, req.Count)
		c.JSON(http.StatusOK, viewOf(cmp))
		return nil
	})
}

type datesRequest struct {
	PickupDate   *string `json:"pickupDate"`
	DeliveryDate *string `json:"deliveryDate"`
}

// SetDates handles PUT /api/v1/composer/dates. Date problems are reported
// in the response but never reject the edit.
func (h *Handlers) SetDates(c *gin.Context) {
	var req datesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.PickupDate == nil && req.DeliveryDate == nil {
		badRequest(c, "pickupDate or deliveryDate is required")
		return
	}

	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		cmp.Update(ctx, func(e *service.Editor) {
			if req.PickupDate != nil {
				e.SetPickup(strings.TrimSpace(*req.PickupDate))
			}
			if req.DeliveryDate != nil {
				e.SetDelivery(strings.TrimSpace(*req.DeliveryDate))
			}
		})
		c.JSON(http.StatusOK, viewOf(cmp))
		return nil
	})
}

// Reset handles POST /api/v1/composer/reset
func (h *Handlers) Reset(c *gin.Context) {
	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		cmp.Reset(ctx)
		c.JSON(http.StatusOK, viewOf(cmp))
		return nil
	})
}

// Validation handles GET /api/v1/composer/validation
func (h *Handlers) Validation(c *gin.Context) {
	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		c.JSON(http.StatusOK, gin.H{
			"dateErrors":      cmp.DateErrors(),
			"canSubmit":       cmp.CanSubmit(),
			"now":             cmp.Now(),
			"minDeliveryDate": cmp.MinDeliveryDate(),
		})
		return nil
	})
}

// PreviewSubmit handles POST /api/v1/composer/submit/preview and returns
// the payload that would be submitted.
func (h *Handlers) PreviewSubmit(c *gin.Context) {
	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		payload, err := cmp.TrySubmit()
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, gin.H{"payload": payload})
		return nil
	})
}

type submitRequest struct {
	Confirm bool `json:"confirm"`
}

// Submit handles POST /api/v1/composer/submit. The order is only emitted
// when the body carries "confirm": true.
func (h *Handlers) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		payload, err := cmp.Submit(ctx, service.Confirmed(req.Confirm))
		if err != nil {
			return err
		}
		c.JSON(http.StatusCreated, gin.H{
			"payload":  payload,
			"composer": viewOf(cmp),
		})
		return nil
	})
}

// LastOrder handles GET /api/v1/composer/last-order
func (h *Handlers) LastOrder(c *gin.Context) {
	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		state := cmp.LoadLastOrder(ctx)
		if state == nil {
			return apperrors.ErrNotFound
		}
		c.JSON(http.StatusOK, gin.H{
			"state":  state,
			"totals": service.ComputeTotals(*state, cmp.Rates()),
		})
		return nil
	})
}

// RepeatLastOrder handles POST /api/v1/composer/repeat
func (h *Handlers) RepeatLastOrder(c *gin.Context) {
	h.withComposer(c, func(ctx context.Context, cmp *service.Composer) error {
		if _, err := cmp.RepeatLastOrder(ctx); err != nil {
			return err
		}
		c.JSON(http.StatusOK, viewOf(cmp))
		return nil
	})
}
