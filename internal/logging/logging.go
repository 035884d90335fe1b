// Package logging builds the process-wide zap logger. Before Init runs all
// loggers are no-ops, which keeps library packages usable from tests without
// any setup. The TUI owns stdout, so log output goes to stderr only.
package logging

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Init builds the global logger. verbose enables debug level.
func Init(verbose bool) error {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	built, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("logging: build logger: %w", err)
	}

	mu.Lock()
	logger = built
	mu.Unlock()
	return nil
}

// L returns the global logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Named returns a named sub-logger for one subsystem.
func Named(name string) *zap.Logger { return L().Named(name) }

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	_ = L().Sync()
}
