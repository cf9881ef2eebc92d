// Package logging builds the zap logger from the log section of the config.
package logging

import (
	"go.uber.org/zap"

	"energy-admin/config"
)

// New builds a logger for the server. Format "json" selects the production
// encoder; anything else the development one.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	return build(cfg, nil)
}

// NewFile builds a logger that writes to cfg.File only. The console owns the
// terminal, so with no file configured logging is discarded.
func NewFile(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.File == "" {
		return zap.NewNop(), nil
	}
	return build(cfg, []string{cfg.File})
}

func build(cfg config.LogConfig, outputs []string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	if outputs != nil {
		zapCfg.OutputPaths = outputs
		zapCfg.ErrorOutputPaths = outputs
	}
	return zapCfg.Build()
}
