package repository

import (
	"context"
	"fmt"

	"github.com/tm-acme-shop/smartfold-composer/internal/apperrors"
	"go.uber.org/zap"
)

const probeKey = "__laundry_test__"

// SafeStore wraps a Store that may be unavailable. It probes the backend
// once with a write and delete; when that fails every later operation is a
// no-op and reads report nothing stored.
type SafeStore struct {
	inner     Store
	available bool
	logger    *zap.Logger
}

// NewSafeStore probes inner and returns the wrapper. A nil inner store is
// treated as unavailable.
func NewSafeStore(ctx context.Context, inner Store, logger *zap.Logger) *SafeStore {
	s := &SafeStore{inner: inner, logger: logger}
	if inner == nil {
		logger.Warn("Snapshot storage unavailable", zap.String("reason", "no store configured"))
		return s
	}
	if err := probe(ctx, inner); err != nil {
		logger.Warn("Snapshot storage unavailable", zap.Error(err))
		return s
	}
	s.available = true
	return s
}

func probe(ctx context.Context, store Store) error {
	if err := store.Set(ctx, probeKey, []byte("1")); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	if err := store.Delete(ctx, probeKey); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	return nil
}

// Available reports whether the backend passed its probe.
func (s *SafeStore) Available() bool {
	return s.available
}

func (s *SafeStore) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.available {
		return nil, nil
	}
	return s.inner.Get(ctx, key)
}

func (s *SafeStore) Set(ctx context.Context, key string, value []byte) error {
	if !s.available {
		return nil
	}
	return s.inner.Set(ctx, key, value)
}

func (s *SafeStore) Delete(ctx context.Context, key string) error {
	if !s.available {
		return nil
	}
	return s.inner.Delete(ctx, key)
}

func (s *SafeStore) Ping(ctx context.Context) error {
	if !s.available {
		return apperrors.ErrStorageUnavailable
	}
	return s.inner.Ping(ctx)
}
