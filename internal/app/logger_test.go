package app

import (
	"testing"

	"github.com/Freeeeeet/tutoring_scheduler/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.Config
		level    zapcore.Level
		encoding string
	}{
		{
			name:     "development defaults to debug console",
			cfg:      config.Config{Environment: "development"},
			level:    zapcore.DebugLevel,
			encoding: "console",
		},
		{
			name:     "production defaults to info json",
			cfg:      config.Config{Environment: "production"},
			level:    zapcore.InfoLevel,
			encoding: "json",
		},
		{
			name:     "level override",
			cfg:      config.Config{Environment: "production", LogLevel: "warn"},
			level:    zapcore.WarnLevel,
			encoding: "json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zc, err := loggerConfig(&tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.level, zc.Level.Level())
			assert.Equal(t, tt.encoding, zc.Encoding)
			assert.Equal(t, serviceName, zc.InitialFields["service"])
			assert.Equal(t, tt.cfg.Environment, zc.InitialFields["env"])
		})
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&config.Config{LogLevel: "loud"})
	assert.ErrorContains(t, err, "LOG_LEVEL")
}
