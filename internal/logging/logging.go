// Package logging builds the zap loggers used by the entrypoints.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// New creates a production zap logger at the given level. Unknown levels
// fall back to info.
func New(level, service, environment string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case "warn", "warning":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger.With(
		zap.String("service", service),
		zap.String("env", environment),
	), nil
}
