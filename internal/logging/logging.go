// Package logging configures the structured logger shared across the
// submission client, so every phase transition, cleanup action, and RPC
// attempt is reported as a consistent, parseable log line.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger. debug widens the level to Debug and switches to
// a human-readable console encoder; production use gets leveled JSON
// output suitable for collection by a log aggregator.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = !debug

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}
