package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/tm-acme-shop/smartfold-composer/internal/apperrors"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"go.uber.org/zap"
)

// Confirmer asks the customer to approve an order before it is emitted.
type Confirmer interface {
	ConfirmOrder(ctx context.Context, payload *models.OrderPayload) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, payload *models.OrderPayload) bool

// ConfirmOrder calls f.
func (f ConfirmFunc) ConfirmOrder(ctx context.Context, payload *models.OrderPayload) bool {
	return f(ctx, payload)
}

// Confirmed returns a Confirmer that always answers ok.
func Confirmed(ok bool) Confirmer {
	return ConfirmFunc(func(context.Context, *models.OrderPayload) bool { return ok })
}

// TrySubmit validates the order and returns the payload that would be
// emitted. Validation failures come back as *apperrors.ValidationError with
// pickup, delivery and total fields.
func (c *Composer) TrySubmit() (*models.OrderPayload, error) {
	dates := c.DateErrors()
	totals := c.Totals()

	fields := map[string]string{
		"pickup":   dates.Pickup,
		"delivery": dates.Delivery,
	}
	if totals.Total <= 0 {
		fields["total"] = MsgTotalZero
	}

	if verr := apperrors.NewFieldErrors("order cannot be submitted", fields); verr != nil {
		c.recorder.SubmissionValidated(false, verr.Details)
		c.logger.Debug("Submission blocked", zap.Any("fields", verr.Details))
		return nil, verr
	}

	c.recorder.SubmissionValidated(true, nil)
	return BuildPayload(c.state, totals), nil
}

// Submit validates, asks confirmer for approval and then emits the order.
// After emission the order is kept as the last order, the draft is deleted
// and the composer is reset. A declined confirmation returns
// apperrors.ErrNotConfirmed and leaves the state untouched.
func (c *Composer) Submit(ctx context.Context, confirmer Confirmer) (*models.OrderPayload, error) {
	payload, err := c.TrySubmit()
	if err != nil {
		return nil, err
	}

	if confirmer == nil || !confirmer.ConfirmOrder(ctx, payload) {
		c.recorder.SubmissionDeclined()
		c.logger.Info("Submission declined", zap.Int64("total", payload.Total))
		return nil, apperrors.ErrNotConfirmed
	}

	submitted := &models.SubmittedOrder{
		ID:          uuid.NewString(),
		SessionID:   c.session,
		Payload:     *payload,
		SubmittedAt: c.now().UTC(),
	}

	c.emit(ctx, submitted)
	c.recorder.OrderSubmitted(payload.Total)

	snapshot := c.state.Clone()
	c.saveLastOrder(ctx, &models.LastOrderSnapshot{
		Version: models.SnapshotVersion,
		State:   &snapshot,
		Payload: payload,
	})
	c.deleteDraft(ctx)

	c.mutate(ctx, mutation{reason: ReasonSubmitted, payload: payload}, func(e *Editor) {
		e.Reset()
	})

	c.logger.Info("Order submitted",
		zap.String("submission_id", submitted.ID),
		zap.Int("items", len(payload.Items)),
		zap.Int64("total", payload.Total),
	)
	return payload, nil
}

// emit hands the order to the sink. Delivery failures belong to the
// transport and are only logged here.
func (c *Composer) emit(ctx context.Context, order *models.SubmittedOrder) {
	if c.sink == nil {
		return
	}
	if err := c.sink.PublishOrderSubmitted(ctx, order); err != nil {
		c.logger.Error("Failed to emit submitted order",
			zap.String("submission_id", order.ID),
			zap.Error(err),
		)
	}
}

func (c *Composer) saveLastOrder(ctx context.Context, snapshot *models.LastOrderSnapshot) {
	if c.drafts == nil {
		return
	}
	if err := c.drafts.SaveLastOrder(ctx, snapshot); err != nil {
		c.logger.Warn("Failed to save last order", zap.Error(err))
	}
}

func (c *Composer) deleteDraft(ctx context.Context) {
	if c.drafts == nil {
		return
	}
	if err := c.drafts.DeleteDraft(ctx); err != nil {
		c.logger.Warn("Failed to delete draft", zap.Error(err))
	}
}

// LoadLastOrder returns the last submitted order as a state, reconstructing
// it from the payload when the snapshot predates stored state. It returns
// nil when there is no usable last order.
func (c *Composer) LoadLastOrder(ctx context.Context) *models.OrderState {
	if c.drafts == nil {
		return nil
	}
	snapshot, err := c.drafts.LoadLastOrder(ctx)
	if err != nil {
		c.logger.Warn("Failed to load last order", zap.Error(err))
		return nil
	}
	if snapshot == nil {
		return nil
	}
	if snapshot.State != nil {
		state := snapshot.State.Clone()
		return &state
	}
	if snapshot.Payload != nil {
		state := StateFromPayload(snapshot.Payload, c.newID)
		return &state
	}
	return nil
}

// HasLastOrder reports whether a repeat order is available.
func (c *Composer) HasLastOrder(ctx context.Context) bool {
	return c.LoadLastOrder(ctx) != nil
}

// RepeatLastOrder loads the last order into the composer under new line
// ids. Dates are carried over and usually need to be picked again.
func (c *Composer) RepeatLastOrder(ctx context.Context) (models.Totals, error) {
	state := c.LoadLastOrder(ctx)
	if state == nil {
		return models.Totals{}, apperrors.ErrNotFound
	}
	totals := c.Hydrate(ctx, *state, true)
	c.logger.Info("Last order loaded", zap.Int("lines", len(state.Lines)))
	return totals, nil
}
