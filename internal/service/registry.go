package service

import (
	"context"
	"sync"
	"time"

	"github.com/tm-acme-shop/smartfold-composer/internal/apperrors"
	"go.uber.org/zap"
)

// Factory builds the composer for a session on first mount.
type Factory func(sessionID string) *Composer

// SessionGauge tracks the number of mounted sessions.
type SessionGauge interface {
	SessionsMounted(n int)
}

type session struct {
	mu       sync.Mutex
	composer *Composer

	// lastAccess is guarded by Registry.mu.
	lastAccess time.Time
}

// Registry holds one composer per session and serialises access to each.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	factory  Factory
	gauge    SessionGauge
	now      func() time.Time
	logger   *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory, gauge SessionGauge, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*session),
		factory:  factory,
		gauge:    gauge,
		now:      time.Now,
		logger:   logger,
	}
}

// Mount creates the session's composer if needed and mounts it. Mounting an
// already mounted session is a no-op and reports false.
func (r *Registry) Mount(ctx context.Context, sessionID string) bool {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if !ok {
		s = &session{composer: r.factory(sessionID)}
		r.sessions[sessionID] = s
		r.logger.Debug("Session created", zap.String("session_id", sessionID))
	}
	s.lastAccess = r.now()
	count := len(r.sessions)
	r.mu.Unlock()

	r.setGauge(count)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer.Mount(ctx)
}

// With runs fn with exclusive access to the session's composer. It returns
// apperrors.ErrNotFound when the session was never mounted.
func (r *Registry) With(sessionID string, fn func(c *Composer) error) error {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if ok {
		s.lastAccess = r.now()
	}
	r.mu.Unlock()
	if !ok {
		return apperrors.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.composer)
}

// Release forgets a session and reports whether it was mounted. Persisted
// snapshots are left in place, so a later mount restores the draft.
func (r *Registry) Release(sessionID string) bool {
	r.mu.Lock()
	_, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	count := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.logger.Debug("Session released", zap.String("session_id", sessionID))
		r.setGauge(count)
	}
	return ok
}

// ReleaseIdle forgets every session not used within maxIdle and returns how
// many were released.
func (r *Registry) ReleaseIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	released := 0
	for id, s := range r.sessions {
		if s.lastAccess.Before(cutoff) {
			delete(r.sessions, id)
			released++
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if released > 0 {
		r.setGauge(count)
	}
	return released
}

// Sweep releases idle sessions every interval until ctx is done. It returns
// at once when either duration is not positive.
func (r *Registry) Sweep(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.ReleaseIdle(maxIdle); n > 0 {
				r.logger.Info("Idle sessions released", zap.Int("count", n), zap.Int("remaining", r.Len()))
			}
		}
	}
}

func (r *Registry) setGauge(count int) {
	if r.gauge != nil {
		r.gauge.SessionsMounted(count)
	}
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
