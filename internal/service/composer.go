package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"go.uber.org/zap"
)

// ChangeReason says which operation produced a Change.
type ChangeReason string

const (
	ReasonLineAdded    ChangeReason = "line_added"
	ReasonLineRemoved  ChangeReason = "line_removed"
	ReasonExpress      ChangeReason = "express"
	ReasonPremiumAddon ChangeReason = "premium_addon"
	ReasonDates        ChangeReason = "dates"
	ReasonBatch        ChangeReason = "batch"
	ReasonReset        ChangeReason = "reset"
	ReasonHydrated     ChangeReason = "hydrated"
	ReasonSubmitted    ChangeReason = "submitted"
)

// Change is delivered to listeners after every state mutation.
type Change struct {
	Reason ChangeReason
	State  models.OrderState
	Totals models.Totals
	Dates  models.DateErrors

	// Persisted is false for hydration and post-submission resets, which
	// do not write the draft.
	Persisted bool

	// Payload is set only for ReasonSubmitted.
	Payload *models.OrderPayload
}

// Listener observes composer changes. Listeners run synchronously and must
// not call back into the composer.
type Listener func(Change)

// DraftStore persists draft and last-order snapshots for one composer.
type DraftStore interface {
	SaveDraft(ctx context.Context, state models.OrderState, totals models.Totals) error
	LoadDraft(ctx context.Context) (*models.DraftSnapshot, error)
	DeleteDraft(ctx context.Context) error
	SaveLastOrder(ctx context.Context, snapshot *models.LastOrderSnapshot) error
	LoadLastOrder(ctx context.Context) (*models.LastOrderSnapshot, error)
}

// SubmissionSink receives confirmed orders for delivery to the order API.
type SubmissionSink interface {
	PublishOrderSubmitted(ctx context.Context, order *models.SubmittedOrder) error
}

// Recorder collects composer metrics.
type Recorder interface {
	LineAdded(kind models.ServiceKind)
	DraftSaved(err error)
	SubmissionValidated(ok bool, errs map[string]string)
	OrderSubmitted(total int64)
	SubmissionDeclined()
}

type nopRecorder struct{}

func (nopRecorder) LineAdded(models.ServiceKind) {}
func (nopRecorder) DraftSaved(error) {}
func (nopRecorder) SubmissionValidated(bool, map[string]string) {}
func (nopRecorder) OrderSubmitted(int64) {}
func (nopRecorder) SubmissionDeclined() {}

// Composer owns one in-progress order. It is not safe for concurrent use;
// callers that share a composer between goroutines must serialise access.
type Composer struct {
	session   string
	state     models.OrderState
	rates     RateCatalog
	builder   *LineBuilder
	drafts    DraftStore
	sink      SubmissionSink
	recorder  Recorder
	newID     func() string
	now       func() time.Time
	loc       *time.Location
	listeners []Listener
	mounted   bool
	logger    *zap.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithSession sets the session the composer belongs to.
func WithSession(id string) Option {
	return func(c *Composer) { c.session = id }
}

// WithRates replaces the default rate catalog.
func WithRates(rates RateCatalog) Option {
	return func(c *Composer) { c.rates = rates }
}

// WithDraftStore enables draft and last-order persistence.
func WithDraftStore(store DraftStore) Option {
	return func(c *Composer) { c.drafts = store }
}

// WithSink sets where confirmed orders are emitted.
func WithSink(sink SubmissionSink) Option {
	return func(c *Composer) { c.sink = sink }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Composer) { c.recorder = r }
}

// WithIDGenerator replaces the line id generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Composer) { c.newID = fn }
}

// WithClock replaces the clock used for date validation.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// WithLocation sets the zone pickup and delivery values are read in.
func WithLocation(loc *time.Location) Option {
	return func(c *Composer) { c.loc = loc }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Composer) { c.logger = logger }
}

// NewComposer creates an empty composer.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{
		rates:    DefaultRates(),
		recorder: nopRecorder{},
		newID:    uuid.NewString,
		now:      time.Now,
		loc:      time.Local,
		logger:   zap.NewNop(),
		state:    emptyState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.builder = NewLineBuilder(c.rates)
	if c.session != "" {
		c.logger = c.logger.With(zap.String("session_id", c.session))
	}
	return c
}

func emptyState() models.OrderState {
	return models.OrderState{Lines: []models.LineItem{}}
}

// OnChange registers a listener for state changes.
func (c *Composer) OnChange(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Builder returns the line builder bound to the composer's rates.
func (c *Composer) Builder() *LineBuilder {
	return c.builder
}

// Rates returns the rate catalog in use.
func (c *Composer) Rates() RateCatalog {
	return c.rates
}

// Session returns the session id.
func (c *Composer) Session() string {
	return c.session
}

// Mount restores the saved draft the first time it is called and reports
// whether a draft was applied. Later calls do nothing.
func (c *Composer) Mount(ctx context.Context) bool {
	if c.mounted {
		return false
	}
	c.mounted = true

	draft := c.loadDraft(ctx)
	if draft == nil {
		c.logger.Debug("Composer mounted without draft")
		return false
	}

	c.Hydrate(ctx, draft.OrderState, false)
	c.logger.Info("Composer mounted from draft", zap.Int("lines", len(draft.Lines)))
	return true
}

// Mounted reports whether Mount has run.
func (c *Composer) Mounted() bool {
	return c.mounted
}

// State returns a copy of the current order state.
func (c *Composer) State() models.OrderState {
	return c.state.Clone()
}

// Totals computes the totals of the current state.
func (c *Composer) Totals() models.Totals {
	return ComputeTotals(c.state, c.rates)
}

// DateErrors validates the current pickup and delivery values.
func (c *Composer) DateErrors() models.DateErrors {
	return ValidateDates(c.state.PickupDate, c.state.DeliveryDate, c.now(), c.loc)
}

// MinDeliveryDate is the earliest delivery value to offer.
func (c *Composer) MinDeliveryDate() string {
	return MinDeliveryDate(c.state.PickupDate, c.now(), c.loc)
}

// Now returns the current minute as a datetime-local value.
func (c *Composer) Now() string {
	return FormatLocalDateTime(truncateToMinute(c.now(), c.loc), c.loc)
}

// CanSubmit reports whether the submit action should be enabled.
func (c *Composer) CanSubmit() bool {
	return c.DateErrors().Valid() && c.Totals().Total > 0
}

// AddLine appends item under a fresh id and returns the stored line.
func (c *Composer) AddLine(ctx context.Context, item models.LineItem) models.LineItem {
	var added models.LineItem
	c.mutate(ctx, mutation{reason: ReasonLineAdded, persist: true}, func(e *Editor) {
		added = e.AddLine(item)
	})
	c.recorder.LineAdded(added.Kind)
	return added
}

// RemoveLine removes the line with id and reports whether it existed.
func (c *Composer) RemoveLine(ctx context.Context, id string) bool {
	if !c.hasLine(id) {
		return false
	}
	c.mutate(ctx, mutation{reason: ReasonLineRemoved, persist: true}, func(e *Editor) {
		e.RemoveLine(id)
	})
	return true
}

func (c *Composer) hasLine(id string) bool {
	for _, line := range c.state.Lines {
		if line.ID == id {
			return true
		}
	}
	return false
}

// SetExpress turns the express surcharge on or off.
func (c *Composer) SetExpress(ctx context.Context, on bool) models.Totals {
	return c.mutate(ctx, mutation{reason: ReasonExpress, persist: true}, func(e *Editor) {
		e.SetExpress(on)
	})
}

// ToggleExpress flips the express surcharge.
func (c *Composer) ToggleExpress(ctx context.Context) models.Totals {
	return c.SetExpress(ctx, !c.state.Express)
}

// SetPremiumAddonCount sets the premium care add-on quantity. Zero turns
// the add-on off; negative values are treated as zero.
func (c *Composer) SetPremiumAddonCount(ctx context.Context, n int) models.Totals {
	return c.mutate(ctx, mutation{reason: ReasonPremiumAddon, persist: true}, func(e *Editor) {
		e.SetPremiumAddonCount(n)
	})
}

// SetPickup sets the pickup date-time.
func (c *Composer) SetPickup(ctx context.Context, value string) models.DateErrors {
	c.mutate(ctx, mutation{reason: ReasonDates, persist: true}, func(e *Editor) {
		e.SetPickup(value)
	})
	return c.DateErrors()
}

// SetDelivery sets the delivery date-time.
func (c *Composer) SetDelivery(ctx context.Context, value string) models.DateErrors {
	c.mutate(ctx, mutation{reason: ReasonDates, persist: true}, func(e *Editor) {
		e.SetDelivery(value)
	})
	return c.DateErrors()
}

// Reset clears the order back to its empty state.
func (c *Composer) Reset(ctx context.Context) models.Totals {
	return c.mutate(ctx, mutation{reason: ReasonReset, persist: true}, func(e *Editor) {
		e.Reset()
	})
}

// Update applies several edits with a single notification and draft write.
func (c *Composer) Update(ctx context.Context, fn func(e *Editor)) models.Totals {
	var added []models.ServiceKind
	totals := c.mutate(ctx, mutation{reason: ReasonBatch, persist: true}, func(e *Editor) {
		fn(e)
		added = e.added
	})
	for _, kind := range added {
		c.recorder.LineAdded(kind)
	}
	return totals
}

// Hydrate replaces the state with snapshot without writing a draft. Line
// ids are regenerated when newIDs is set or a line has none.
func (c *Composer) Hydrate(ctx context.Context, snapshot models.OrderState, newIDs bool) models.Totals {
	return c.mutate(ctx, mutation{reason: ReasonHydrated}, func(e *Editor) {
		e.replace(snapshot, newIDs)
	})
}

// mutation describes how a state change is finished off. Hydration and
// post-submission resets run with persist unset so they never overwrite
// the stored draft.
type mutation struct {
	reason  ChangeReason
	persist bool
	payload *models.OrderPayload
}

func (c *Composer) mutate(ctx context.Context, m mutation, fn func(e *Editor)) models.Totals {
	editor := &Editor{state: &c.state, newID: c.newID}
	fn(editor)

	totals := ComputeTotals(c.state, c.rates)
	c.notify(Change{
		Reason:    m.reason,
		State:     c.state.Clone(),
		Totals:    totals,
		Dates:     c.DateErrors(),
		Persisted: m.persist,
		Payload:   m.payload,
	})

	if m.persist {
		c.saveDraft(ctx, totals)
	}
	return totals
}

func (c *Composer) notify(change Change) {
	for _, l := range c.listeners {
		l(change)
	}
}

func (c *Composer) saveDraft(ctx context.Context, totals models.Totals) {
	if c.drafts == nil {
		return
	}
	err := c.drafts.SaveDraft(ctx, c.state.Clone(), totals)
	c.recorder.DraftSaved(err)
	if err != nil {
		c.logger.Warn("Failed to save draft", zap.Error(err))
		return
	}
	c.logger.Debug("Draft saved", zap.Int("lines", len(c.state.Lines)), zap.Int64("total", totals.Total))
}

func (c *Composer) loadDraft(ctx context.Context) *models.DraftSnapshot {
	if c.drafts == nil {
		return nil
	}
	draft, err := c.drafts.LoadDraft(ctx)
	if err != nil {
		c.logger.Warn("Failed to load draft", zap.Error(err))
		return nil
	}
	return draft
}

// Editor applies edits to the state inside one mutation.
type Editor struct {
	state *models.OrderState
	newID func() string
	added []models.ServiceKind
}

// AddLine appends a copy of item under a fresh id.
func (e *Editor) AddLine(item models.LineItem) models.LineItem {
	line := item.Clone()
	line.ID = e.newID()
	e.state.Lines = append(e.state.Lines, line)
	e.added = append(e.added, line.Kind)
	return line.Clone()
}

// RemoveLine drops the line with id.
func (e *Editor) RemoveLine(id string) bool {
	for i, line := range e.state.Lines {
		if line.ID == id {
			e.state.Lines = append(e.state.Lines[:i:i], e.state.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// SetExpress sets the express flag.
func (e *Editor) SetExpress(on bool) {
	e.state.Express = on
}

// SetPremiumAddonCount sets the add-on quantity, clamped at zero.
func (e *Editor) SetPremiumAddonCount(n int) {
	if n < 0 {
		n = 0
	}
	e.state.PremiumAddonCount = n
}

// SetPickup sets the pickup value.
func (e *Editor) SetPickup(value string) {
	e.state.PickupDate = value
}

// SetDelivery sets the delivery value.
func (e *Editor) SetDelivery(value string) {
	e.state.DeliveryDate = value
}

// Reset empties the state.
func (e *Editor) Reset() {
	*e.state = emptyState()
}

func (e *Editor) replace(snapshot models.OrderState, newIDs bool) {
	next := emptyState()
	for _, line := range snapshot.Lines {
		copied := line.Clone()
		if newIDs || copied.ID == "" {
			copied.ID = e.newID()
		}
		next.Lines = append(next.Lines, copied)
	}
	next.Express = snapshot.Express
	if snapshot.PremiumAddonCount > 0 {
		next.PremiumAddonCount = snapshot.PremiumAddonCount
	}
	next.PickupDate = snapshot.PickupDate
	next.DeliveryDate = snapshot.DeliveryDate
	*e.state = next
}
