// Package logging builds the zap logger shared by the padpainter commands.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration
type Config struct {
	Level       string
	Format      string // "console" or "json"
	OutputPath  string
	Development bool
}

// New creates a logger from cfg. Unknown levels fall back to info; output
// goes to stderr unless OutputPath is set, keeping stdout for results.
func New(cfg Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Sampling = nil
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
		if cfg.Development {
			level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
	}
	zapConfig.Level = level

	switch cfg.Format {
	case "", "console":
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	case "json":
		zapConfig.Encoding = "json"
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	out := "stderr"
	if cfg.OutputPath != "" {
		out = cfg.OutputPath
	}
	zapConfig.OutputPaths = []string{out}
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return logger, nil
}
