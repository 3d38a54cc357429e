// Package clilog builds the shared structured logger the three cmd/
// drivers use, translating a --log-level string option into a zap level.
package clilog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production zap logger, optionally overriding its level from
// a CLI option's raw text ("debug", "info", "warn", "error"). An empty
// level string keeps zap's default (info).
func New(level string) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		var lvl zapcore.Level
		if err := lvl.Set(level); err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
