// Package logging builds the structured loggers used across the composer
// service. Every component gets a child of one process-wide base logger.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "smartfold-composer"

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Configure replaces the base logger. Level is one of debug, info, warn or
// error; development switches to the human readable console encoder.
func Configure(level string, development bool) error {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		return err
	}

	mu.Lock()
	base = logger
	mu.Unlock()
	return nil
}

// New returns a logger for the named component.
func New(component string) *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With(zap.String("component", component))
}

// Sync flushes the base logger.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = base.Sync()
}
