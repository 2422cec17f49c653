package app

import (
	"fmt"

	"github.com/Freeeeeet/tutoring_scheduler/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "tutoring-scheduler"

// NewLogger builds the process logger: JSON in production, colored console
// otherwise. LOG_LEVEL overrides the environment's default level.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	zc, err := loggerConfig(cfg)
	if err != nil {
		return nil, err
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func loggerConfig(cfg *config.Config) (zap.Config, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return zap.Config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zc.Level = level
	}

	zc.OutputPaths = []string{"stdout"}
	zc.InitialFields = map[string]any{
		"service": serviceName,
		"env":     cfg.Environment,
	}
	return zc, nil
}
