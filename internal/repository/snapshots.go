package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tm-acme-shop/smartfold-composer/internal/models"
	"go.uber.org/zap"
)

// Storage keys of the two snapshot documents.
const (
	DraftKey     = "laundry.placeOrderDraft"
	LastOrderKey = "laundry.placeOrderLast"
)

// SnapshotRepository reads and writes the draft and last-order snapshots of
// one session.
type SnapshotRepository struct {
	store     Store
	sessionID string
	logger    *zap.Logger
}

// NewSnapshotRepository creates a repository for sessionID. An empty
// session uses the bare keys.
func NewSnapshotRepository(store Store, sessionID string, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		store:     store,
		sessionID: sessionID,
		logger:    logger.With(zap.String("session_id", sessionID)),
	}
}

func (r *SnapshotRepository) key(name string) string {
	if r.sessionID == "" {
		return name
	}
	return r.sessionID + ":" + name
}

// SaveDraft overwrites the draft snapshot.
func (r *SnapshotRepository) SaveDraft(ctx context.Context, state models.OrderState, totals models.Totals) error {
	snapshot := models.DraftSnapshot{
		Version:    models.SnapshotVersion,
		OrderState: state,
		Totals:     totals,
	}
	if snapshot.Lines == nil {
		snapshot.Lines = []models.LineItem{}
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	return r.store.Set(ctx, r.key(DraftKey), data)
}

// LoadDraft returns the draft snapshot, or nil when none is stored or the
// stored document cannot be read.
func (r *SnapshotRepository) LoadDraft(ctx context.Context) (*models.DraftSnapshot, error) {
	data, err := r.store.Get(ctx, r.key(DraftKey))
	if err != nil || data == nil {
		return nil, err
	}

	var snapshot models.DraftSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		r.logger.Warn("Failed to parse stored draft", zap.Error(err))
		return nil, nil
	}
	if snapshot.Version > models.SnapshotVersion {
		r.logger.Warn("Ignoring draft from newer version", zap.Int("version", snapshot.Version))
		return nil, nil
	}
	if snapshot.Lines == nil {
		snapshot.Lines = []models.LineItem{}
	}
	return &snapshot, nil
}

// DeleteDraft removes the draft snapshot.
func (r *SnapshotRepository) DeleteDraft(ctx context.Context) error {
	return r.store.Delete(ctx, r.key(DraftKey))
}

// SaveLastOrder overwrites the last-order snapshot.
func (r *SnapshotRepository) SaveLastOrder(ctx context.Context, snapshot *models.LastOrderSnapshot) error {
	out := *snapshot
	if out.Version == 0 {
		out.Version = models.SnapshotVersion
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal last order: %w", err)
	}
	return r.store.Set(ctx, r.key(LastOrderKey), data)
}

// LoadLastOrder returns the last-order snapshot, or nil when none is stored
// or it cannot be read.
func (r *SnapshotRepository) LoadLastOrder(ctx context.Context) (*models.LastOrderSnapshot, error) {
	data, err := r.store.Get(ctx, r.key(LastOrderKey))
	if err != nil || data == nil {
		return nil, err
	}

	var snapshot models.LastOrderSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		r.logger.Warn("Failed to parse stored last order", zap.Error(err))
		return nil, nil
	}
	if snapshot.Version > models.SnapshotVersion {
		r.logger.Warn("Ignoring last order from newer version", zap.Int("version", snapshot.Version))
		return nil, nil
	}
	if snapshot.State == nil && snapshot.Payload == nil {
		return nil, nil
	}
	return &snapshot, nil
}
