package handlers

import (
	"context"

	"github.com/tm-acme-shop/smartfold-composer/internal/config"
	"github.com/tm-acme-shop/smartfold-composer/internal/logging"
	"github.com/tm-acme-shop/smartfold-composer/internal/service"
	"go.uber.org/zap"
)

// SessionHeader carries the opaque session id every composer route needs.
const SessionHeader = "X-Session-ID"

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handlers for the composer service.
type Handlers struct {
	registry *service.Registry
	rates    service.RateCatalog
	storage  Pinger
	config   *config.Config
	logger   *zap.Logger
}

// NewHandlers creates a new handlers instance. storage may be nil.
func NewHandlers(
	registry *service.Registry,
	rates service.RateCatalog,
	storage Pinger,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		registry: registry,
		rates:    rates,
		storage:  storage,
		config:   cfg,
		logger:   logging.New("handlers"),
	}
}
